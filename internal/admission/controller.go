// Package admission decides whether a proposed trade may be appended to an
// account's log. Every check runs against a fresh replay of the log while the
// account's lock is held, so two concurrent proposals cannot both spend the
// same cash or sell the same units.
package admission

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/kjannette/trahn-ledger/internal/ids"
	"github.com/kjannette/trahn-ledger/internal/models"
	"github.com/kjannette/trahn-ledger/internal/risk"
	"github.com/kjannette/trahn-ledger/internal/valuation"
	"github.com/rs/zerolog"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-/]{0,19}$`)

type TradeLog interface {
	ListExecuted(ctx context.Context, accountID string) ([]models.Trade, error)
	Append(ctx context.Context, t *models.Trade) (*models.Trade, error)
}

type AccountReader interface {
	Get(ctx context.Context, id string) (*models.Account, error)
}

type Notifier interface {
	Send(msg string)
}

type Proposal struct {
	Symbol   string
	Side     models.TradeSide
	Kind     models.OrderKind
	Quantity float64
	Price    float64
}

// Deps wires the controller. Guardian, Engine and Notifier are optional;
// portfolio circuit breakers need both Guardian and Engine.
type Deps struct {
	Accounts AccountReader
	Trades   TradeLog
	Guardian *risk.Guardian
	Engine   *valuation.Engine
	Notifier Notifier
	Log      zerolog.Logger
}

type Controller struct {
	accounts AccountReader
	trades   TradeLog
	guardian *risk.Guardian
	engine   *valuation.Engine
	notifier Notifier
	locks    *Locker
	pending  sync.WaitGroup
	log      zerolog.Logger
	now      func() time.Time
}

func NewController(d Deps) *Controller {
	return &Controller{
		accounts: d.Accounts,
		trades:   d.Trades,
		guardian: d.Guardian,
		engine:   d.Engine,
		notifier: d.Notifier,
		locks:    NewLocker(),
		log:      d.Log.With().Str("service", "admission").Logger(),
		now:      time.Now,
	}
}

// Submit validates p, checks it against the account's replayed state and
// appends it as an executed trade. Rejections are typed errors (see
// IsRejection) and leave the log untouched.
func (c *Controller) Submit(ctx context.Context, accountID string, p Proposal) (*models.Trade, error) {
	p, err := normalize(p)
	if err != nil {
		return nil, err
	}

	saved, err := c.admit(ctx, accountID, p)
	if err != nil {
		if IsRejection(err) {
			c.log.Info().
				Str("account", accountID).
				Str("symbol", p.Symbol).
				Str("side", string(p.Side)).
				Float64("quantity", p.Quantity).
				Float64("price", p.Price).
				Str("reason", err.Error()).
				Msg("Trade rejected")
		}
		return nil, err
	}

	c.log.Info().
		Str("account", accountID).
		Str("trade", saved.ID).
		Str("symbol", saved.Symbol).
		Str("side", string(saved.Side)).
		Float64("quantity", saved.Quantity).
		Float64("price", saved.Price).
		Msg("Trade accepted")

	if c.notifier != nil {
		msg := fmt.Sprintf("%s %g %s @ $%.2f (account %s)",
			strings.ToUpper(string(saved.Side)), saved.Quantity, saved.Symbol, saved.Price, accountID)
		c.pending.Add(1)
		go func() {
			defer c.pending.Done()
			c.notifier.Send(msg)
		}()
	}

	return saved, nil
}

// Wait blocks until notifications for already accepted trades have been sent.
// Short-lived callers such as the CLI must call it before exiting.
func (c *Controller) Wait() {
	c.pending.Wait()
}

func (c *Controller) admit(ctx context.Context, accountID string, p Proposal) (*models.Trade, error) {
	unlock := c.locks.Lock(accountID)
	defer unlock()

	acct, err := c.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if acct == nil {
		return nil, ErrAccountNotFound
	}
	if !acct.IsActive {
		return nil, &AccountInactiveError{AccountID: accountID}
	}

	trades, err := c.trades.ListExecuted(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load trade log: %w", err)
	}
	ledger := valuation.Replay(acct.InitialBalance, trades)

	notional := p.Quantity * p.Price
	if err := c.checkRisk(ctx, accountID, p, notional, acct.InitialBalance, trades); err != nil {
		return nil, err
	}

	switch p.Side {
	case models.SideBuy:
		if ledger.Cash < notional {
			return nil, &InsufficientFundsError{Cash: ledger.Cash, Required: notional}
		}
	case models.SideSell:
		if !ledger.CanSell(p.Symbol, p.Quantity) {
			return nil, &InsufficientHoldingsError{Symbol: p.Symbol, Owned: ledger.Owned(p.Symbol), Requested: p.Quantity}
		}
	}

	now := c.now().UTC()
	t := &models.Trade{
		ID:         ids.NewTradeID(now),
		AccountID:  accountID,
		Symbol:     p.Symbol,
		Side:       p.Side,
		Quantity:   p.Quantity,
		Price:      p.Price,
		Kind:       p.Kind,
		Status:     models.StatusExecuted,
		CreatedAt:  now,
		ExecutedAt: &now,
	}
	saved, err := c.trades.Append(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("append trade: %w", err)
	}
	return saved, nil
}

func (c *Controller) checkRisk(ctx context.Context, accountID string, p Proposal, notional, initial float64, trades []models.Trade) error {
	if c.guardian == nil {
		return nil
	}

	if err := c.guardian.PreTradeCheck(ctx, accountID, notional); err != nil {
		return riskError(err)
	}

	if p.Side != models.SideBuy || c.engine == nil || !c.guardian.Limits().PortfolioChecksEnabled() {
		return nil
	}
	v := c.engine.Value(ctx, initial, trades)
	return riskError(c.guardian.PortfolioCheck(v.Snapshot.TotalProfitLossPercent))
}

func riskError(err error) error {
	if err == nil {
		return nil
	}
	var v *risk.Violation
	if errors.As(err, &v) {
		return &RiskLimitError{Rule: v.Rule, Limit: v.Limit, Actual: v.Actual, Reason: v.Error()}
	}
	return fmt.Errorf("risk check: %w", err)
}

func normalize(p Proposal) (Proposal, error) {
	p.Symbol = strings.ToUpper(strings.TrimSpace(p.Symbol))
	if p.Symbol == "" {
		return p, &ValidationError{Field: "symbol", Reason: "required"}
	}
	if !symbolPattern.MatchString(p.Symbol) {
		return p, &ValidationError{Field: "symbol", Reason: fmt.Sprintf("unknown symbol %q", p.Symbol)}
	}

	side, err := models.ParseSide(string(p.Side))
	if err != nil {
		return p, &ValidationError{Field: "side", Reason: "must be buy or sell"}
	}
	p.Side = side

	p.Kind = models.OrderKind(strings.ToLower(strings.TrimSpace(string(p.Kind))))
	if p.Kind == "" {
		p.Kind = models.KindMarket
	}
	if !p.Kind.IsValid() {
		return p, &ValidationError{Field: "kind", Reason: "must be market or limit"}
	}

	if !finitePositive(p.Quantity) {
		return p, &ValidationError{Field: "quantity", Reason: "must be a positive number"}
	}
	if !finitePositive(p.Price) {
		return p, &ValidationError{Field: "price", Reason: "must be a positive number"}
	}
	return p, nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
