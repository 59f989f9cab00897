package valuation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kjannette/trahn-ledger/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 4, 15, 0, 0, 0, time.UTC)

func trade(i int, sym string, side models.TradeSide, qty, price float64) models.Trade {
	ts := t0.Add(time.Duration(i) * time.Minute)
	return models.Trade{
		ID: string(rune('A' + i)), AccountID: "acc", Symbol: sym, Side: side,
		Quantity: qty, Price: price, Kind: models.KindMarket,
		Status: models.StatusExecuted, CreatedAt: ts, ExecutedAt: &ts,
	}
}

func staticPrices(m map[string]float64) PriceFunc {
	return func(_ context.Context, symbol string) (float64, error) {
		p, ok := m[symbol]
		if !ok {
			return 0, errors.New("no quote")
		}
		return p, nil
	}
}

func newEngine(prices PriceFunc) *Engine {
	return NewEngine(prices, 50*time.Millisecond, zerolog.Nop())
}

func TestReplay_AverageCostOrderSensitivity(t *testing.T) {
	l := Replay(10000, []models.Trade{
		trade(0, "AAPL", models.SideBuy, 10, 100),
		trade(1, "AAPL", models.SideBuy, 10, 200),
		trade(2, "AAPL", models.SideSell, 15, 150),
	})

	pos := l.Positions["AAPL"]
	assert.Equal(t, 5.0, pos.Quantity)
	assert.Equal(t, 750.0, pos.CostBasis)
	assert.Equal(t, 150.0, pos.AveragePrice())
	assert.Equal(t, 0.0, l.RealizedPnL)
}

func TestReplay_RealizedGainOnSell(t *testing.T) {
	l := Replay(1000, []models.Trade{
		trade(0, "ETH", models.SideBuy, 2, 100),
		trade(1, "ETH", models.SideSell, 1, 160),
	})

	assert.Equal(t, 60.0, l.RealizedPnL)
	assert.Equal(t, 960.0, l.Cash)
	assert.Equal(t, 100.0, l.Positions["ETH"].CostBasis)
}

func TestReplay_Conservation(t *testing.T) {
	trades := []models.Trade{
		trade(0, "BTC", models.SideBuy, 0.5, 8000),
		trade(1, "AAPL", models.SideBuy, 12, 150.25),
		trade(2, "BTC", models.SideSell, 0.25, 9000),
		trade(3, "AAPL", models.SideSell, 4, 160.5),
		trade(4, "MSFT", models.SideBuy, 3, 410),
		trade(5, "BTC", models.SideBuy, 0.125, 8800),
	}

	expected := 20000.0
	for _, tr := range trades {
		if tr.Side == models.SideBuy {
			expected -= tr.Quantity * tr.Price
		} else {
			expected += tr.Quantity * tr.Price
		}
	}

	l := Replay(20000, trades)
	assert.Equal(t, expected, l.Cash)
}

func TestReplay_DustSnapsToZeroAndIsRemoved(t *testing.T) {
	l := Replay(1000, []models.Trade{
		trade(0, "SOL", models.SideBuy, 1, 100),
		trade(1, "SOL", models.SideSell, 0.9995, 100),
	})

	_, held := l.Positions["SOL"]
	assert.False(t, held)
	assert.Equal(t, 0.0, l.Owned("SOL"))
	assert.Empty(t, l.Symbols())
}

func TestReplay_ZeroEpsilonBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		trades    []models.Trade
		wantQty   float64
		wantHeld  bool
		wantCash  float64
		wantBasis float64
	}{
		{
			name:      "buy below epsilon is kept",
			trades:    []models.Trade{trade(0, "BTC", models.SideBuy, 0.0005, 60000)},
			wantQty:   0.0005,
			wantHeld:  true,
			wantCash:  970,
			wantBasis: 30,
		},
		{
			name: "sell of tiny position closes it",
			trades: []models.Trade{
				trade(0, "BTC", models.SideBuy, 0.0005, 60000),
				trade(1, "BTC", models.SideSell, 0.0005, 62000),
			},
			wantCash: 1001,
		},
		{
			name: "remainder after inexact partial sell closes exactly",
			trades: []models.Trade{
				trade(0, "ETH", models.SideBuy, 0.3, 1000),
				trade(1, "ETH", models.SideSell, 0.1, 1000),
				trade(2, "ETH", models.SideSell, 0.2, 1000),
			},
			wantCash: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Replay(1000, tt.trades)
			sym := tt.trades[0].Symbol
			pos, held := l.Positions[sym]
			assert.Equal(t, tt.wantHeld, held)
			assert.InDelta(t, tt.wantQty, pos.Quantity, 1e-12)
			assert.InDelta(t, tt.wantBasis, pos.CostBasis, 1e-9)
			assert.InDelta(t, tt.wantCash, l.Cash, 1e-9)
			assert.GreaterOrEqual(t, l.Owned(sym), 0.0)
		})
	}
}

func TestLedger_CanSell(t *testing.T) {
	l := Replay(1000, []models.Trade{
		trade(0, "ETH", models.SideBuy, 0.3, 1000),
		trade(1, "ETH", models.SideSell, 0.1, 1000),
		trade(2, "BTC", models.SideBuy, 0.0005, 60000),
	})

	assert.Less(t, l.Owned("ETH"), 0.2)
	assert.True(t, l.CanSell("ETH", 0.2))
	assert.False(t, l.CanSell("ETH", 0.2001))
	assert.True(t, l.CanSell("BTC", 0.0005))
	assert.False(t, l.CanSell("BTC", 0.0006))
	assert.False(t, l.CanSell("SOL", 0.0001))
}

func TestReplay_SkipsNonExecuted(t *testing.T) {
	pending := trade(0, "AAPL", models.SideBuy, 10, 100)
	pending.Status = models.StatusPending
	cancelled := trade(1, "AAPL", models.SideBuy, 10, 100)
	cancelled.Status = models.StatusCancelled

	l := Replay(5000, []models.Trade{pending, cancelled})
	assert.Equal(t, 5000.0, l.Cash)
	assert.Empty(t, l.Positions)
}

func TestReplay_DoesNotMutateLog(t *testing.T) {
	trades := []models.Trade{
		trade(0, "AAPL", models.SideBuy, 10, 100),
		trade(1, "AAPL", models.SideSell, 10, 120),
	}
	before := append([]models.Trade(nil), trades...)

	Replay(5000, trades)
	assert.Equal(t, before, trades)
}

func TestValue_Scenario(t *testing.T) {
	e := newEngine(staticPrices(map[string]float64{"BTC": 9500}))

	v := e.Value(context.Background(), 10000, []models.Trade{
		trade(0, "BTC", models.SideBuy, 1, 9000),
	})

	s := v.Snapshot
	assert.Equal(t, 1000.0, s.CashBalance)
	assert.Equal(t, 9500.0, s.TotalHoldingsValue)
	assert.Equal(t, 500.0, s.UnrealizedPnL)
	assert.Equal(t, 10500.0, s.TotalPortfolioValue)
	assert.Equal(t, 500.0, s.TotalProfitLoss)
	assert.Equal(t, 5.0, s.TotalProfitLossPercent)
	assert.False(t, s.Estimated)

	require.Len(t, v.Holdings, 1)
	h := v.Holdings[0]
	assert.Equal(t, "BTC", h.Symbol)
	assert.Equal(t, 9000.0, h.CostBasis)
	assert.InDelta(t, 9500.0/10500.0*100, h.AllocationPercent, 1e-9)
}

func TestValue_QuoteFailureFallsBackToAverageCost(t *testing.T) {
	e := newEngine(staticPrices(map[string]float64{"AAPL": 200}))

	v := e.Value(context.Background(), 10000, []models.Trade{
		trade(0, "AAPL", models.SideBuy, 10, 150),
		trade(1, "BTC", models.SideBuy, 0.5, 8000),
	})

	require.Len(t, v.Holdings, 2)
	btc := v.Holdings[1]
	assert.Equal(t, "BTC", btc.Symbol)
	assert.True(t, btc.Estimated)
	assert.Equal(t, 8000.0, btc.CurrentPrice)
	assert.Equal(t, 0.0, btc.UnrealizedPnL)

	assert.True(t, v.Snapshot.Estimated)
	assert.Equal(t, 500.0, v.Snapshot.UnrealizedPnL)
	assert.Equal(t, 10000.0-1500-4000+2000+4000, v.Snapshot.TotalPortfolioValue)
}

func TestValue_SlowQuoteTimesOut(t *testing.T) {
	slow := func(ctx context.Context, _ string) (float64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	e := newEngine(slow)

	start := time.Now()
	v := e.Value(context.Background(), 1000, []models.Trade{trade(0, "AAPL", models.SideBuy, 2, 100)})

	assert.Less(t, time.Since(start), 2*time.Second)
	require.Len(t, v.Holdings, 1)
	assert.True(t, v.Holdings[0].Estimated)
	assert.Equal(t, 100.0, v.Holdings[0].CurrentPrice)
}

func TestValue_NonPositiveQuoteIsTreatedAsUnavailable(t *testing.T) {
	e := newEngine(staticPrices(map[string]float64{"AAPL": 0}))

	v := e.Value(context.Background(), 1000, []models.Trade{trade(0, "AAPL", models.SideBuy, 2, 100)})
	assert.True(t, v.Holdings[0].Estimated)
	assert.Equal(t, 200.0, v.Snapshot.TotalHoldingsValue)
}

func TestValue_NilPriceFunc(t *testing.T) {
	e := newEngine(nil)
	v := e.Value(context.Background(), 1000, []models.Trade{trade(0, "AAPL", models.SideBuy, 2, 100)})
	assert.True(t, v.Snapshot.Estimated)
	assert.Equal(t, 1000.0, v.Snapshot.TotalPortfolioValue)
}

func TestValue_ZeroInitialBalanceGuards(t *testing.T) {
	e := newEngine(staticPrices(nil))

	v := e.Value(context.Background(), 0, nil)
	assert.Equal(t, 0.0, v.Snapshot.TotalProfitLossPercent)
	assert.Equal(t, 0.0, v.Snapshot.TotalPortfolioValue)
	assert.Empty(t, v.Holdings)
}

func TestValue_Idempotent(t *testing.T) {
	e := newEngine(staticPrices(map[string]float64{"AAPL": 187.3, "BTC": 61234.5, "ETH": 3012.75}))
	trades := []models.Trade{
		trade(0, "AAPL", models.SideBuy, 7, 181.1),
		trade(1, "BTC", models.SideBuy, 0.0125, 60000.1),
		trade(2, "ETH", models.SideBuy, 1.3, 2999.9),
		trade(3, "AAPL", models.SideSell, 2.5, 190.05),
		trade(4, "ETH", models.SideSell, 0.3, 3100),
	}

	first := e.Value(context.Background(), 25000, trades)
	second := e.Value(context.Background(), 25000, trades)
	assert.Equal(t, first, second)
}

func TestValue_HoldingsSortedBySymbol(t *testing.T) {
	e := newEngine(staticPrices(map[string]float64{"MSFT": 1, "AAPL": 1, "BTC": 1}))
	v := e.Value(context.Background(), 1000, []models.Trade{
		trade(0, "MSFT", models.SideBuy, 1, 1),
		trade(1, "BTC", models.SideBuy, 1, 1),
		trade(2, "AAPL", models.SideBuy, 1, 1),
	})

	var got []string
	for _, h := range v.Holdings {
		got = append(got, h.Symbol)
	}
	assert.Equal(t, []string{"AAPL", "BTC", "MSFT"}, got)
}

func TestAssetPerformance_IgnoresSells(t *testing.T) {
	e := newEngine(staticPrices(map[string]float64{"AAPL": 180}))

	p := e.AssetPerformance(context.Background(), []models.Trade{
		trade(0, "AAPL", models.SideBuy, 10, 100),
		trade(1, "AAPL", models.SideBuy, 10, 200),
		trade(2, "AAPL", models.SideSell, 15, 150),
	})

	require.Len(t, p.Assets, 1)
	a := p.Assets[0]
	assert.Equal(t, 20.0, a.BoughtQuantity)
	assert.Equal(t, 3000.0, a.Invested)
	assert.Equal(t, 150.0, a.AverageEntry)
	assert.Equal(t, 3600.0, a.CurrentValue)
	assert.Equal(t, 600.0, a.Gain)
	assert.Equal(t, 20.0, a.GainPercent)

	assert.Equal(t, 3000.0, p.TotalInvested)
	assert.Equal(t, 600.0, p.TotalGain)
	assert.Equal(t, 20.0, p.GainPercent)
}

func TestAssetPerformance_FallbackToAverageEntry(t *testing.T) {
	e := newEngine(staticPrices(nil))

	p := e.AssetPerformance(context.Background(), []models.Trade{
		trade(0, "DOGE", models.SideBuy, 1000, 0.25),
	})

	require.Len(t, p.Assets, 1)
	assert.True(t, p.Assets[0].Estimated)
	assert.Equal(t, 0.0, p.TotalGain)
	assert.True(t, p.Estimated)
}

func TestAssetPerformance_Empty(t *testing.T) {
	p := newEngine(nil).AssetPerformance(context.Background(), nil)
	assert.Empty(t, p.Assets)
	assert.Equal(t, 0.0, p.GainPercent)
}
