package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockchainClient_AddressBalance(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expected    decimal.Decimal
		expectedErr error
		expectErr   bool
	}{
		{name: "funded address", status: http.StatusOK, body: "100000000", expected: decimal.NewFromInt(100_000_000)},
		{name: "trailing newline", status: http.StatusOK, body: "42\n", expected: decimal.NewFromInt(42)},
		{name: "empty address", status: http.StatusOK, body: "0", expected: decimal.Zero},
		{name: "rate limit text", status: http.StatusOK, body: "Maximum concurrent requests reached", expectedErr: ErrMalformedBalance, expectErr: true},
		{name: "decimal body", status: http.StatusOK, body: "1.5", expectedErr: ErrMalformedBalance, expectErr: true},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := NewBlockchainClient(time.Second, WithAddressBalanceURL(srv.URL+"/q/addressbalance/"))
			balance, err := c.AddressBalance(context.Background(), "bc1qtest")

			assert.Equal(t, "/q/addressbalance/bc1qtest", gotPath)
			if tt.expectErr {
				require.Error(t, err)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(balance), "expected %s, got %s", tt.expected, balance)
		})
	}
}

func TestBlockchainClient_AccountBalance(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		expected  decimal.Decimal
		expectErr bool
	}{
		{name: "string balance", body: `{"balance":"2000000000000000000"}`, expected: decimal.RequireFromString("2000000000000000000")},
		{name: "numeric balance", body: `{"balance":12345}`, expected: decimal.NewFromInt(12345)},
		{name: "larger than int64", body: `{"balance":"123456789012345678901234"}`, expected: decimal.RequireFromString("123456789012345678901234")},
		{name: "missing balance", body: `{"nonce":1}`, expectErr: true},
		{name: "fractional balance", body: `{"balance":"1.5"}`, expectErr: true},
		{name: "not json", body: `oops`, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := NewBlockchainClient(time.Second, WithAccountBalanceURL(srv.URL+"/v2/eth/data/account/%s/wallet"))
			balance, err := c.AccountBalance(context.Background(), "0xabc")

			assert.Equal(t, "/v2/eth/data/account/0xabc/wallet", gotPath)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(balance), "expected %s, got %s", tt.expected, balance)
		})
	}
}
