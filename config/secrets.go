package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Secret keys.
const (
	SecretBTCXPub       = "btc_xpub"
	SecretETHAddress    = "eth_address"
	SecretStoreDSN      = "store_dsn"
	SecretRedisPassword = "redis_password"
)

// ErrSecretNotFound is returned by a SecretProvider for an unknown key.
var ErrSecretNotFound = errors.New("secret not found")

// SecretProvider is a key-value secret lookup.
type SecretProvider interface {
	Get(key string) (string, error)
}

// EnvSecrets reads secrets from environment variables named after the upper-cased key.
type EnvSecrets struct {
	// Prefix is prepended to the variable name, e.g. "WB_" turns btc_xpub into WB_BTC_XPUB.
	Prefix string
}

func (s EnvSecrets) Get(key string) (string, error) {
	name := s.Prefix + strings.ToUpper(key)
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return "", errors.Wrap(ErrSecretNotFound, name)
	}

	return value, nil
}

// MapSecrets serves secrets from memory.
type MapSecrets map[string]string

func (m MapSecrets) Get(key string) (string, error) {
	value, ok := m[key]
	if !ok {
		return "", errors.Wrap(ErrSecretNotFound, key)
	}

	return value, nil
}
