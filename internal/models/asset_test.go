package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssetTypeOf(t *testing.T) {
	cases := map[string]AssetType{
		"BTC":     AssetCrypto,
		"eth":     AssetCrypto,
		"BTC-USD": AssetCrypto,
		"SOL/USD": AssetCrypto,
		"AAPL":    AssetEquity,
		"BRK.B":   AssetEquity,
		"":        AssetEquity,
	}
	for sym, want := range cases {
		assert.Equal(t, want, AssetTypeOf(sym), sym)
	}
}

func TestBaseSymbol(t *testing.T) {
	assert.Equal(t, "BTC", BaseSymbol(" btc-usd "))
	assert.Equal(t, "AAPL", BaseSymbol("AAPL"))
	assert.Equal(t, "-X", BaseSymbol("-X"))
}
