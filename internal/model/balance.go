package model

// AssetKind distinguishes the chain's base coin from the configured token
type AssetKind int

const (
	AssetNative AssetKind = iota
	AssetToken
)

// Asset describes one transferable asset of the configured network
type Asset struct {
	Kind     AssetKind
	Symbol   string // e.g. "TRX" or "USDT"
	Decimals int
}

// Balance holds the balances of one account.
// Raw values are base units; the string fields are formatted with the asset decimals.
type Balance struct {
	Address     string
	Native      Asset
	Token       Asset
	NativeRaw   uint64
	TokenRaw    uint64
	NativeValue string
	TokenValue  string
	Fiat        string // optional estimate of both balances, empty when disabled or unavailable
	FiatSymbol  string
}
