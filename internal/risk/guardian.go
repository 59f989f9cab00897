package risk

import (
	"context"
	"fmt"
)

// DailyTradeCounter abstracts the trade-counting dependency so Guardian
// can be tested without a real database.
type DailyTradeCounter interface {
	CountToday(ctx context.Context, accountID string) (int, error)
}

// Limits holds the four risk thresholds from config.
// A zero value for any field means that check is disabled.
type Limits struct {
	MaxDailyTrades     int
	MaxPositionSizeUSD float64
	StopLossPercent    float64
	TakeProfitPercent  float64
}

// PortfolioChecksEnabled reports whether PortfolioCheck can ever trip.
// Callers use it to skip pricing the portfolio when it cannot.
func (l Limits) PortfolioChecksEnabled() bool {
	return l.StopLossPercent > 0 || l.TakeProfitPercent > 0
}

const (
	RulePositionSize = "max_position_size"
	RuleDailyTrades  = "max_daily_trades"
	RuleStopLoss     = "stop_loss"
	RuleTakeProfit   = "take_profit"
)

// Violation is returned when a limit blocks a trade.
type Violation struct {
	Rule   string
	Limit  float64
	Actual float64
	msg    string
}

func (v *Violation) Error() string { return v.msg }

type Guardian struct {
	limits  Limits
	counter DailyTradeCounter
}

func NewGuardian(limits Limits, counter DailyTradeCounter) *Guardian {
	return &Guardian{limits: limits, counter: counter}
}

func (g *Guardian) Limits() Limits { return g.limits }

// PreTradeCheck validates per-trade constraints before execution.
// Returns nil if the trade is allowed, a *Violation if blocked, or a plain
// error if the daily count could not be read.
func (g *Guardian) PreTradeCheck(ctx context.Context, accountID string, tradeUSDValue float64) error {
	if g.limits.MaxPositionSizeUSD > 0 && tradeUSDValue > g.limits.MaxPositionSizeUSD {
		return &Violation{
			Rule:   RulePositionSize,
			Limit:  g.limits.MaxPositionSizeUSD,
			Actual: tradeUSDValue,
			msg: fmt.Sprintf("trade blocked: position size $%.2f exceeds max $%.2f",
				tradeUSDValue, g.limits.MaxPositionSizeUSD),
		}
	}

	if g.limits.MaxDailyTrades > 0 && g.counter != nil {
		count, err := g.counter.CountToday(ctx, accountID)
		if err != nil {
			return fmt.Errorf("unable to verify daily trade count: %w", err)
		}
		if count >= g.limits.MaxDailyTrades {
			return &Violation{
				Rule:   RuleDailyTrades,
				Limit:  float64(g.limits.MaxDailyTrades),
				Actual: float64(count),
				msg: fmt.Sprintf("trade blocked: daily limit of %d trades reached (%d executed today)",
					g.limits.MaxDailyTrades, count),
			}
		}
	}

	return nil
}

// PortfolioCheck evaluates portfolio-level circuit breakers.
// pnlPercent is the total return against the initial balance (e.g. -8.5 means down 8.5%).
func (g *Guardian) PortfolioCheck(pnlPercent float64) error {
	if g.limits.StopLossPercent > 0 && pnlPercent <= -g.limits.StopLossPercent {
		return &Violation{
			Rule:   RuleStopLoss,
			Limit:  -g.limits.StopLossPercent,
			Actual: pnlPercent,
			msg: fmt.Sprintf("STOP-LOSS triggered: portfolio down %.2f%% (threshold: -%.2f%%)",
				pnlPercent, g.limits.StopLossPercent),
		}
	}

	if g.limits.TakeProfitPercent > 0 && pnlPercent >= g.limits.TakeProfitPercent {
		return &Violation{
			Rule:   RuleTakeProfit,
			Limit:  g.limits.TakeProfitPercent,
			Actual: pnlPercent,
			msg: fmt.Sprintf("TAKE-PROFIT triggered: portfolio up %.2f%% (threshold: +%.2f%%)",
				pnlPercent, g.limits.TakeProfitPercent),
		}
	}

	return nil
}
