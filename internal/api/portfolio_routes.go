package api

import (
	"errors"
	"net/http"

	"github.com/kjannette/trahn-ledger/internal/portfolio"
	"github.com/kjannette/trahn-ledger/internal/report"
)

// readFailed writes the response for a failed read and reports whether it did.
func (s *Server) readFailed(w http.ResponseWriter, accountID, what string, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, portfolio.ErrAccountNotFound) {
		writeCodedError(w, http.StatusNotFound, "account_not_found", "account not found", nil)
		return true
	}
	s.log.Error().Err(err).Str("account", accountID).Msgf("Error fetching %s", what)
	writeError(w, http.StatusInternalServerError, "failed to fetch "+what)
	return true
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	v, err := s.portfolio.Valuation(r.Context(), id)
	if s.readFailed(w, id, "portfolio", err) {
		return
	}
	writeJSON(w, http.StatusOK, report.NewSnapshotView(v))
}

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	v, err := s.portfolio.Valuation(r.Context(), id)
	if s.readFailed(w, id, "holdings", err) {
		return
	}
	writeJSON(w, http.StatusOK, report.NewHoldingViews(v))
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, err := s.portfolio.Performance(r.Context(), id)
	if s.readFailed(w, id, "performance", err) {
		return
	}
	writeJSON(w, http.StatusOK, report.NewPerformanceView(p))
}

func (s *Server) handleRecentTrades(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	trades, err := s.portfolio.RecentTrades(r.Context(), id, parseLimit(r, defaultRecentLimit))
	if s.readFailed(w, id, "trades", err) {
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleTradeStats(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	stats, err := s.portfolio.Stats(r.Context(), id)
	if s.readFailed(w, id, "trade stats", err) {
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
