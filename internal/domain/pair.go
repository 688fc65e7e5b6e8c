// Package domain defines the records shared by the balance jobs.
package domain

import "fmt"

// Pair coin/fiat price pair.
type Pair struct {
	// From coin symbol.
	From string
	// To fiat symbol.
	To string
}

// String returns the string representation.
func (p Pair) String() string {
	return fmt.Sprintf("%s_%s", p.From, p.To)
}

// Symbol returns the concatenated symbol representation used by exchanges.
func (p Pair) Symbol() string {
	return fmt.Sprintf("%s%s", p.From, p.To)
}

// Dashed returns the dash separated form, e.g. BTC-EUR.
func (p Pair) Dashed() string {
	return fmt.Sprintf("%s-%s", p.From, p.To)
}
