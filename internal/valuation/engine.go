package valuation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kjannette/trahn-ledger/internal/models"
	"github.com/rs/zerolog"
)

// PriceFunc looks up the current reference price of a symbol.
type PriceFunc func(ctx context.Context, symbol string) (float64, error)

const defaultQuoteTimeout = 5 * time.Second

type Holding struct {
	Symbol               string
	Quantity             float64
	CostBasis            float64
	AveragePrice         float64
	CurrentPrice         float64
	CurrentValue         float64
	UnrealizedPnL        float64
	UnrealizedPnLPercent float64
	AllocationPercent    float64
	// Estimated is set when the quote was unavailable and CurrentPrice is the average cost.
	Estimated bool
}

type Snapshot struct {
	InitialBalance         float64
	CashBalance            float64
	TotalHoldingsValue     float64
	TotalPortfolioValue    float64
	RealizedPnL            float64
	UnrealizedPnL          float64
	TotalProfitLoss        float64
	TotalProfitLossPercent float64
	Estimated              bool
}

type Valuation struct {
	Snapshot Snapshot
	Holdings []Holding // sorted by symbol
}

// Engine values a trade log against live quotes. It holds no per-account
// state and is safe for concurrent use.
type Engine struct {
	prices  PriceFunc
	timeout time.Duration
	log     zerolog.Logger
}

func NewEngine(prices PriceFunc, quoteTimeout time.Duration, log zerolog.Logger) *Engine {
	if quoteTimeout <= 0 {
		quoteTimeout = defaultQuoteTimeout
	}
	return &Engine{
		prices:  prices,
		timeout: quoteTimeout,
		log:     log.With().Str("service", "valuation").Logger(),
	}
}

// Value replays the log and prices every residual position. It never fails:
// a missing quote degrades that holding to its average cost.
func (e *Engine) Value(ctx context.Context, initialBalance float64, trades []models.Trade) Valuation {
	return e.valueLedger(ctx, Replay(initialBalance, trades))
}

func (e *Engine) valueLedger(ctx context.Context, l Ledger) Valuation {
	snap := Snapshot{
		InitialBalance: l.InitialBalance,
		CashBalance:    l.Cash,
		RealizedPnL:    l.RealizedPnL,
	}

	holdings := make([]Holding, 0, len(l.Positions))
	for _, sym := range l.Symbols() {
		pos := l.Positions[sym]
		avg := pos.AveragePrice()

		price, ok := e.lookup(ctx, sym)
		if !ok {
			price = avg
		}

		h := Holding{
			Symbol:       sym,
			Quantity:     pos.Quantity,
			CostBasis:    pos.CostBasis,
			AveragePrice: avg,
			CurrentPrice: price,
			CurrentValue: pos.Quantity * price,
			Estimated:    !ok,
		}
		h.UnrealizedPnL = h.CurrentValue - h.CostBasis
		h.UnrealizedPnLPercent = percentOf(h.UnrealizedPnL, h.CostBasis)

		snap.TotalHoldingsValue += h.CurrentValue
		snap.UnrealizedPnL += h.UnrealizedPnL
		snap.Estimated = snap.Estimated || h.Estimated
		holdings = append(holdings, h)
	}

	snap.TotalPortfolioValue = snap.CashBalance + snap.TotalHoldingsValue
	snap.TotalProfitLoss = snap.RealizedPnL + snap.UnrealizedPnL
	snap.TotalProfitLossPercent = percentOf(snap.TotalPortfolioValue-l.InitialBalance, l.InitialBalance)

	for i := range holdings {
		holdings[i].AllocationPercent = percentOf(holdings[i].CurrentValue, snap.TotalPortfolioValue)
	}

	return Valuation{Snapshot: snap, Holdings: holdings}
}

// lookup fetches one quote under the engine's timeout. ok is false on error,
// timeout, or a non-positive / non-finite price.
func (e *Engine) lookup(ctx context.Context, symbol string) (float64, bool) {
	if e.prices == nil {
		return 0, false
	}

	qctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	price, err := e.prices(qctx, symbol)
	if err == nil && (!(price > 0) || math.IsInf(price, 1)) {
		err = fmt.Errorf("invalid price %v", price)
	}
	if err != nil {
		e.log.Warn().Err(err).Str("symbol", symbol).Msg("Quote unavailable, valuing at average cost")
		return 0, false
	}
	return price, true
}

func percentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
