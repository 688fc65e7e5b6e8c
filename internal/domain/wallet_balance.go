package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletBalance is one observation of a wallet's holdings.
// Records are append-only and never updated once written.
type WalletBalance struct {
	WalletName      string          `json:"wallet_name"`
	WalletAddress   string          `json:"wallet_address,omitempty"`
	CoinSymbol      string          `json:"coin_symbol"`
	CoinUnit        string          `json:"coin_unit"`
	CoinAmount      decimal.Decimal `json:"coin_amount"`
	CoinDecimals    int32           `json:"coin_decimals"`
	FiatSymbol      string          `json:"fiat_symbol"`
	FiatUnit        string          `json:"fiat_unit"`
	CoinPriceInFiat decimal.Decimal `json:"coin_price_in_fiat"`
	Timestamp       time.Time       `json:"timestamp"`
}

// NewWalletBalance creates a WalletBalance for the coin priced in fiat at ts.
func NewWalletBalance(
	walletName string,
	walletAddress string,
	coin Coin,
	amount decimal.Decimal,
	fiat Fiat,
	price decimal.Decimal,
	ts time.Time,
) WalletBalance {
	return WalletBalance{
		WalletName:      walletName,
		WalletAddress:   walletAddress,
		CoinSymbol:      coin.Symbol,
		CoinUnit:        coin.Unit,
		CoinAmount:      amount,
		CoinDecimals:    coin.Decimals,
		FiatSymbol:      fiat.Symbol,
		FiatUnit:        fiat.Unit,
		CoinPriceInFiat: price,
		Timestamp:       ts.UTC(),
	}
}

// FiatValue returns amount / 10^decimals * price.
func (b WalletBalance) FiatValue() decimal.Decimal {
	return b.CoinAmount.Shift(-b.CoinDecimals).Mul(b.CoinPriceInFiat)
}

// Fiat returns the fiat currency the balance is priced in.
func (b WalletBalance) Fiat() Fiat {
	return Fiat{Symbol: b.FiatSymbol, Unit: b.FiatUnit}
}

// TotalWalletBalances is the fiat total of several wallets at a bucket boundary.
type TotalWalletBalances struct {
	FromWalletNames []string        `json:"from_wallet_names"`
	BalanceInFiat   decimal.Decimal `json:"balance_in_fiat"`
	FiatSymbol      string          `json:"fiat_symbol"`
	FiatUnit        string          `json:"fiat_unit"`
	Timestamp       time.Time       `json:"timestamp"`
}

// AddressCheckpoint is the lowest derivation index of an xpub not yet confirmed as used.
type AddressCheckpoint struct {
	XPub      string    `json:"xpub"`
	Index     uint32    `json:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}
