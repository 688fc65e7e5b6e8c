package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/walletbalance/internal/domain"
)

// PathEnv names the environment variable holding the YAML config path.
const PathEnv = "WALLETBALANCE_CONFIG"

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverWAL      = "wal"
	DriverMemory   = "memory"
)

type Config struct {
	Store      StoreConfig
	Price      PriceConfig
	HTTP       HTTPConfig
	Scanner    ScannerConfig
	Fetcher    FetcherConfig
	Aggregator AggregatorConfig
	Metrics    MetricsConfig
}

type StoreConfig struct {
	Driver   string
	DSN      string
	WALDir   string
	MaxConns int32
	MinConns int32
}

type PriceConfig struct {
	Source        string
	Fiat          domain.Fiat
	CoinbaseURL   string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type HTTPConfig struct {
	Timeout time.Duration
}

type ScannerConfig struct {
	WalletName   string
	XPub         string
	BalanceURL   string
	PathTemplate string
	GapLimit     int
	RequestDelay time.Duration
	MaxAddresses int
}

type FetcherConfig struct {
	WalletName string
	Address    string
	BalanceURL string
}

type AggregatorConfig struct {
	WalletNames []string
	BucketSize  time.Duration
	BucketLimit int
}

type MetricsConfig struct {
	PushgatewayURL string
}

// ConfigTmp mirrors the YAML layout before defaults and secrets are applied.
type ConfigTmp struct {
	Store struct {
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		WALDir   string `yaml:"wal_dir"`
		MaxConns int32  `yaml:"max_conns"`
		MinConns int32  `yaml:"min_conns"`
	} `yaml:"store"`
	Price struct {
		Source      string        `yaml:"source"`
		Fiat        string        `yaml:"fiat"`
		CoinbaseURL string        `yaml:"coinbase_url"`
		CacheTTL    time.Duration `yaml:"cache_ttl"`
		RedisAddr   string        `yaml:"redis_addr"`
		RedisDB     int           `yaml:"redis_db"`
	} `yaml:"price"`
	HTTP struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"http"`
	Scanner struct {
		WalletName   string         `yaml:"wallet_name"`
		BalanceURL   string         `yaml:"balance_url"`
		PathTemplate string         `yaml:"path_template"`
		GapLimit     int            `yaml:"gap_limit"`
		RequestDelay *time.Duration `yaml:"request_delay"`
		MaxAddresses int            `yaml:"max_addresses"`
	} `yaml:"scanner"`
	Fetcher struct {
		WalletName string `yaml:"wallet_name"`
		BalanceURL string `yaml:"balance_url"`
	} `yaml:"fetcher"`
	Aggregator struct {
		WalletNames []string      `yaml:"wallet_names"`
		BucketSize  time.Duration `yaml:"bucket_size"`
		BucketLimit int           `yaml:"bucket_limit"`
	} `yaml:"aggregator"`
	Metrics struct {
		PushgatewayURL string `yaml:"pushgateway_url"`
	} `yaml:"metrics"`
}

// Load reads the file named by WALLETBALANCE_CONFIG, or defaults only when it is unset.
func Load(secrets SecretProvider) (*Config, error) {
	return LoadFile(os.Getenv(PathEnv), secrets)
}

// LoadFile reads path (may be empty), applies defaults and secrets, and validates the result.
// ${VAR} references in the file are expanded from the environment.
func LoadFile(path string, secrets SecretProvider) (*Config, error) {
	var tmp ConfigTmp

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &tmp); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}

	cfg := fromTmp(tmp)
	cfg.applyDefaults()

	if err := cfg.applySecrets(secrets); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

func fromTmp(tmp ConfigTmp) *Config {
	cfg := &Config{
		Store: StoreConfig{
			Driver:   strings.ToLower(tmp.Store.Driver),
			DSN:      tmp.Store.DSN,
			WALDir:   tmp.Store.WALDir,
			MaxConns: tmp.Store.MaxConns,
			MinConns: tmp.Store.MinConns,
		},
		Price: PriceConfig{
			Source:      strings.ToLower(tmp.Price.Source),
			CoinbaseURL: tmp.Price.CoinbaseURL,
			CacheTTL:    tmp.Price.CacheTTL,
			RedisAddr:   tmp.Price.RedisAddr,
			RedisDB:     tmp.Price.RedisDB,
		},
		HTTP: HTTPConfig{Timeout: tmp.HTTP.Timeout},
		Scanner: ScannerConfig{
			WalletName:   tmp.Scanner.WalletName,
			BalanceURL:   tmp.Scanner.BalanceURL,
			PathTemplate: tmp.Scanner.PathTemplate,
			GapLimit:     tmp.Scanner.GapLimit,
			RequestDelay: DefaultRequestDelay,
			MaxAddresses: tmp.Scanner.MaxAddresses,
		},
		Fetcher: FetcherConfig{
			WalletName: tmp.Fetcher.WalletName,
			BalanceURL: tmp.Fetcher.BalanceURL,
		},
		Aggregator: AggregatorConfig{
			WalletNames: tmp.Aggregator.WalletNames,
			BucketSize:  tmp.Aggregator.BucketSize,
			BucketLimit: tmp.Aggregator.BucketLimit,
		},
		Metrics: MetricsConfig{PushgatewayURL: tmp.Metrics.PushgatewayURL},
	}

	// an explicit zero delay is allowed and disables throttling
	if tmp.Scanner.RequestDelay != nil {
		cfg.Scanner.RequestDelay = *tmp.Scanner.RequestDelay
	}

	if fiat := strings.ToUpper(strings.TrimSpace(tmp.Price.Fiat)); fiat != "" {
		cfg.Price.Fiat = domain.Fiat{Symbol: fiat, Unit: fiat}
	}

	return cfg
}

func (c *Config) applySecrets(secrets SecretProvider) error {
	if secrets == nil {
		return nil
	}

	targets := []struct {
		key string
		dst *string
	}{
		{SecretBTCXPub, &c.Scanner.XPub},
		{SecretETHAddress, &c.Fetcher.Address},
		{SecretStoreDSN, &c.Store.DSN},
		{SecretRedisPassword, &c.Price.RedisPassword},
	}

	for _, t := range targets {
		value, err := secrets.Get(t.key)
		if errors.Is(err, ErrSecretNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("secret %s: %w", t.key, err)
		}
		*t.dst = value
	}

	return nil
}
