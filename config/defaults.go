package config

import (
	"time"

	"github.com/vadiminshakov/walletbalance/internal/domain"
)

const (
	DefaultDriver        = DriverPostgres
	DefaultWALDir        = "data/walletbalance"
	DefaultMaxConns      = 4
	DefaultMinConns      = 1
	DefaultPriceSource   = "coinbase"
	DefaultCacheTTL      = time.Minute
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultBTCWalletName = "Trezor - BTC"
	DefaultETHWalletName = "Trezor - ETH"
	DefaultPathTemplate  = "m/0/i"
	DefaultGapLimit      = 1
	DefaultRequestDelay  = 10 * time.Second
	DefaultMaxAddresses  = 1000
	DefaultBucketSize    = 5 * time.Minute
	DefaultBucketLimit   = 100
)

func (c *Config) applyDefaults() {
	if c.Store.Driver == "" {
		c.Store.Driver = DefaultDriver
	}
	if c.Store.WALDir == "" {
		c.Store.WALDir = DefaultWALDir
	}
	if c.Store.MaxConns == 0 {
		c.Store.MaxConns = DefaultMaxConns
	}
	if c.Store.MinConns == 0 {
		c.Store.MinConns = DefaultMinConns
	}

	if c.Price.Source == "" {
		c.Price.Source = DefaultPriceSource
	}
	if c.Price.Fiat.Symbol == "" {
		c.Price.Fiat = domain.Euro
	}
	if c.Price.CacheTTL == 0 {
		c.Price.CacheTTL = DefaultCacheTTL
	}

	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = DefaultHTTPTimeout
	}

	if c.Scanner.WalletName == "" {
		c.Scanner.WalletName = DefaultBTCWalletName
	}
	if c.Scanner.PathTemplate == "" {
		c.Scanner.PathTemplate = DefaultPathTemplate
	}
	if c.Scanner.GapLimit == 0 {
		c.Scanner.GapLimit = DefaultGapLimit
	}
	if c.Scanner.MaxAddresses == 0 {
		c.Scanner.MaxAddresses = DefaultMaxAddresses
	}

	if c.Fetcher.WalletName == "" {
		c.Fetcher.WalletName = DefaultETHWalletName
	}

	if len(c.Aggregator.WalletNames) == 0 {
		c.Aggregator.WalletNames = []string{DefaultBTCWalletName, DefaultETHWalletName}
	}
	if c.Aggregator.BucketSize == 0 {
		c.Aggregator.BucketSize = DefaultBucketSize
	}
	if c.Aggregator.BucketLimit == 0 {
		c.Aggregator.BucketLimit = DefaultBucketLimit
	}
}
