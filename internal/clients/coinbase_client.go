package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/walletbalance/internal/domain"
)

const DefaultCoinbaseURL = "https://api.coinbase.com/v2/prices"

// CoinbaseClient reads spot prices from the Coinbase public API.
type CoinbaseClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCoinbaseClient creates a client; an empty baseURL uses DefaultCoinbaseURL.
func NewCoinbaseClient(baseURL string, timeout time.Duration) *CoinbaseClient {
	if baseURL == "" {
		baseURL = DefaultCoinbaseURL
	}

	return &CoinbaseClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
	}
}

type spotResponse struct {
	Data struct {
		Amount   string `json:"amount"`
		Base     string `json:"base"`
		Currency string `json:"currency"`
	} `json:"data"`
	Errors []struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// SpotPrice returns the price of one whole pair.From coin in pair.To.
func (c *CoinbaseClient) SpotPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	body, err := get(ctx, c.httpClient, fmt.Sprintf("%s/%s/spot", c.baseURL, pair.Dashed()))
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "fetch spot price %s", pair.String())
	}

	var resp spotResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to unmarshal spot price response")
	}

	if len(resp.Errors) > 0 {
		return decimal.Zero, fmt.Errorf("coinbase API error: %s (id: %s)", resp.Errors[0].Message, resp.Errors[0].ID)
	}

	if resp.Data.Amount == "" {
		return decimal.Zero, fmt.Errorf("coinbase API returned empty price for %s", pair.String())
	}

	price, err := decimal.NewFromString(resp.Data.Amount)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "decode spot price %q", resp.Data.Amount)
	}

	return price, nil
}
