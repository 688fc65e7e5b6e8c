package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	DefaultAddressBalanceURL = "https://blockchain.info/q/addressbalance"
	DefaultAccountBalanceURL = "https://api.blockchain.info/v2/eth/data/account/%s/wallet"
)

// ErrMalformedBalance is returned when a balance response is not an integer amount.
var ErrMalformedBalance = errors.New("malformed balance response")

// BlockchainClient queries blockchain.info for address and account balances.
type BlockchainClient struct {
	addressBalanceURL string
	accountBalanceURL string
	httpClient        *http.Client
}

// BlockchainOption configures a BlockchainClient.
type BlockchainOption func(*BlockchainClient)

// WithAddressBalanceURL overrides the BTC address balance endpoint.
func WithAddressBalanceURL(url string) BlockchainOption {
	return func(c *BlockchainClient) {
		c.addressBalanceURL = strings.TrimRight(url, "/")
	}
}

// WithAccountBalanceURL overrides the ETH account endpoint. The URL must contain one %s for the address.
func WithAccountBalanceURL(url string) BlockchainOption {
	return func(c *BlockchainClient) {
		c.accountBalanceURL = url
	}
}

// NewBlockchainClient creates a client with the given request timeout.
func NewBlockchainClient(timeout time.Duration, opts ...BlockchainOption) *BlockchainClient {
	c := &BlockchainClient{
		addressBalanceURL: DefaultAddressBalanceURL,
		accountBalanceURL: DefaultAccountBalanceURL,
		httpClient:        newHTTPClient(timeout),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AddressBalance returns the confirmed balance of a BTC address in satoshis.
// The endpoint answers with a bare integer; anything else is ErrMalformedBalance.
func (c *BlockchainClient) AddressBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	body, err := get(ctx, c.httpClient, fmt.Sprintf("%s/%s", c.addressBalanceURL, address))
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "fetch balance of %s", address)
	}

	raw := strings.TrimSpace(string(body))
	sats, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrMalformedBalance, "address %s: %q", address, raw)
	}

	return decimal.NewFromInt(sats), nil
}

// balance arrives either as a JSON string or a bare number
type accountResponse struct {
	Balance json.Number `json:"balance"`
}

// AccountBalance returns the balance of an ETH account in wei.
func (c *BlockchainClient) AccountBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	body, err := get(ctx, c.httpClient, fmt.Sprintf(c.accountBalanceURL, address))
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "fetch account %s", address)
	}

	var resp accountResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to unmarshal account response")
	}

	if resp.Balance == "" {
		return decimal.Zero, errors.Wrapf(ErrMalformedBalance, "account %s: missing balance", address)
	}

	wei, err := decimal.NewFromString(resp.Balance.String())
	if err != nil || !wei.IsInteger() || wei.IsNegative() {
		return decimal.Zero, errors.Wrapf(ErrMalformedBalance, "account %s: %q", address, resp.Balance.String())
	}

	return wei, nil
}
