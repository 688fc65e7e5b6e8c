package domain

// Coin fixed metadata of a chain's native asset.
type Coin struct {
	Symbol   string
	Unit     string
	Decimals int32
}

var (
	// Bitcoin amounts are counted in satoshis.
	Bitcoin = Coin{Symbol: "BTC", Unit: "SAT", Decimals: 8}
	// Ether amounts are counted in wei.
	Ether = Coin{Symbol: "ETH", Unit: "WEI", Decimals: 18}
)

// Fiat currency a balance is priced in.
type Fiat struct {
	Symbol string
	Unit   string
}

// Euro is the default fiat currency.
var Euro = Fiat{Symbol: "EUR", Unit: "EUR"}

// PairWith returns the price pair of the coin against fiat.
func (c Coin) PairWith(f Fiat) Pair {
	return Pair{From: c.Symbol, To: f.Symbol}
}
