package models

import "strings"

type AssetType string

const (
	AssetCrypto AssetType = "crypto"
	AssetEquity AssetType = "equity"
)

var cryptoSymbols = map[string]struct{}{
	"BTC": {}, "ETH": {}, "SOL": {}, "ADA": {}, "XRP": {},
	"DOGE": {}, "DOT": {}, "AVAX": {}, "MATIC": {}, "LTC": {},
	"LINK": {}, "BNB": {}, "USDT": {}, "USDC": {}, "TRX": {},
	"SHIB": {}, "ATOM": {}, "XLM": {}, "BCH": {}, "UNI": {},
}

// BaseSymbol strips a quote currency from pair notation: "BTC-USD" -> "BTC".
func BaseSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.IndexAny(s, "-/"); i > 0 {
		return s[:i]
	}
	return s
}

// IsCrypto reports membership of the symbol's base in the fixed crypto set.
func IsCrypto(symbol string) bool {
	_, ok := cryptoSymbols[BaseSymbol(symbol)]
	return ok
}

func AssetTypeOf(symbol string) AssetType {
	if IsCrypto(symbol) {
		return AssetCrypto
	}
	return AssetEquity
}
