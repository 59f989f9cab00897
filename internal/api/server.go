package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kjannette/trahn-ledger/internal/admission"
	"github.com/kjannette/trahn-ledger/internal/portfolio"
	"github.com/rs/zerolog"
)

const (
	maxQueryLimit      = portfolio.MaxRecentLimit
	defaultRecentLimit = portfolio.DefaultRecentLimit
	maxBodyBytes       = 1 << 20
)

// Pinger reports storage reachability for /health. pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Port           int
	APIKey         string
	CORSOrigin     string
	StreamInterval time.Duration
}

type Server struct {
	portfolio      *portfolio.Service
	admission      *admission.Controller
	db             Pinger
	apiKey         string
	streamInterval time.Duration
	streamCtx      context.Context
	stopStreams    context.CancelFunc
	httpServer     *http.Server
	log            zerolog.Logger
}

// NewServer builds the REST API. db may be nil when running on the in-memory store.
func NewServer(opts Options, svc *portfolio.Service, ctrl *admission.Controller, db Pinger, log zerolog.Logger) *Server {
	if opts.StreamInterval <= 0 {
		opts.StreamInterval = 5 * time.Second
	}
	s := &Server{
		portfolio:      svc,
		admission:      ctrl,
		db:             db,
		apiKey:         opts.APIKey,
		streamInterval: opts.StreamInterval,
		log:            log.With().Str("service", "api").Logger(),
	}
	s.streamCtx, s.stopStreams = context.WithCancel(context.Background())

	mux := http.NewServeMux()

	// Portfolio routes
	mux.HandleFunc("GET /v1/accounts/{id}/portfolio", s.handlePortfolio)
	mux.HandleFunc("GET /v1/accounts/{id}/holdings", s.handleHoldings)
	mux.HandleFunc("GET /v1/accounts/{id}/performance", s.handlePerformance)
	mux.HandleFunc("GET /v1/accounts/{id}/stream", s.handleStream)

	// Trade routes
	mux.HandleFunc("GET /v1/accounts/{id}/trades/recent", s.handleRecentTrades)
	mux.HandleFunc("GET /v1/accounts/{id}/trades/stats", s.handleTradeStats)
	mux.HandleFunc("POST /v1/accounts/{id}/trades", s.handleSubmitTrade)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := s.authMiddleware(corsMiddleware(mux, opts.CORSOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	// Hijacked websocket connections are not tracked by http.Server.
	s.httpServer.RegisterOnShutdown(s.stopStreams)

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	s.log.Info().
		Str("addr", s.httpServer.Addr).
		Bool("auth", s.apiKey != "").
		Dur("stream_interval", s.streamInterval).
		Msg("REST API server started")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.stopStreams()
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- validation helpers ---

func parseLimit(r *http.Request, defaultLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxQueryLimit {
		return maxQueryLimit
	}
	return n
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeCodedError adds a machine-readable code and any detail fields.
func writeCodedError(w http.ResponseWriter, status int, code, msg string, details map[string]any) {
	body := map[string]any{"error": msg, "code": code}
	for k, v := range details {
		body[k] = v
	}
	writeJSON(w, status, body)
}
