package clients

import (
	"github.com/adshao/go-binance/v2"
)

// NewBinanceClient creates a client for Binance public market data; prices need no API keys.
func NewBinanceClient() *binance.Client {
	return binance.NewClient("", "")
}
