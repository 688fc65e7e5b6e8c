package clients

import (
	"github.com/hirokisan/bybit/v2"
)

// NewBybitClient creates a client for Bybit public market data.
func NewBybitClient() *bybit.Client {
	return bybit.NewClient()
}
