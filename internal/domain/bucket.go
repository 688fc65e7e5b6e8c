package domain

import "time"

// DefaultBucketSize is the width of one aggregation bucket.
const DefaultBucketSize = 5 * time.Minute

// FloorToBucket rounds t down to the bucket grid in UTC.
// For the default 5 minute bucket this drops seconds and sub-seconds and subtracts minute%5.
func FloorToBucket(t time.Time, size time.Duration) time.Time {
	if size <= 0 {
		size = DefaultBucketSize
	}

	return t.UTC().Truncate(size)
}
