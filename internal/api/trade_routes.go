package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kjannette/trahn-ledger/internal/admission"
	"github.com/kjannette/trahn-ledger/internal/models"
	"github.com/kjannette/trahn-ledger/internal/report"
)

type tradeRequest struct {
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Kind     string  `json:"kind"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

func (s *Server) handleSubmitTrade(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req tradeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeCodedError(w, http.StatusBadRequest, "validation", "invalid JSON body", nil)
		return
	}

	trade, err := s.admission.Submit(r.Context(), id, admission.Proposal{
		Symbol:   req.Symbol,
		Side:     models.TradeSide(req.Side),
		Kind:     models.OrderKind(req.Kind),
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		s.writeSubmitError(w, id, err)
		return
	}
	writeJSON(w, http.StatusCreated, report.NewTradeView(*trade))
}

func (s *Server) writeSubmitError(w http.ResponseWriter, accountID string, err error) {
	var (
		ve *admission.ValidationError
		ie *admission.AccountInactiveError
		fe *admission.InsufficientFundsError
		he *admission.InsufficientHoldingsError
		re *admission.RiskLimitError
	)
	switch {
	case errors.As(err, &ve):
		writeCodedError(w, http.StatusBadRequest, "validation", err.Error(), map[string]any{"field": ve.Field})
	case errors.Is(err, admission.ErrAccountNotFound):
		writeCodedError(w, http.StatusNotFound, "account_not_found", err.Error(), nil)
	case errors.As(err, &ie):
		writeCodedError(w, http.StatusConflict, "account_inactive", err.Error(), nil)
	case errors.As(err, &fe):
		writeCodedError(w, http.StatusUnprocessableEntity, "insufficient_funds", err.Error(), map[string]any{
			"cash":     report.Money(fe.Cash),
			"required": report.Money(fe.Required),
		})
	case errors.As(err, &he):
		writeCodedError(w, http.StatusUnprocessableEntity, "insufficient_holdings", err.Error(), map[string]any{
			"symbol":    he.Symbol,
			"owned":     report.Quantity(he.Symbol, he.Owned),
			"requested": he.Requested,
		})
	case errors.As(err, &re):
		writeCodedError(w, http.StatusUnprocessableEntity, "risk_limit", err.Error(), map[string]any{
			"rule":   re.Rule,
			"limit":  re.Limit,
			"actual": report.Money(re.Actual),
		})
	default:
		s.log.Error().Err(err).Str("account", accountID).Msg("Trade submission failed")
		writeError(w, http.StatusInternalServerError, "failed to submit trade")
	}
}
