package pricer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePositivePrice(t *testing.T) {
	price, err := parsePositivePrice("61234.57")
	require.NoError(t, err)
	assert.Equal(t, "61234.57", price.String())

	for _, raw := range []string{"", "abc", "0", "0.00000000", "-1"} {
		_, err := parsePositivePrice(raw)
		assert.Error(t, err, raw)
	}
}
