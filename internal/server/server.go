package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"kestrel-trading-bot/internal/analysis"
	"kestrel-trading-bot/internal/executor"
	"kestrel-trading-bot/internal/httpx"
	"kestrel-trading-bot/internal/interfaces"
	"kestrel-trading-bot/internal/logger"
	"kestrel-trading-bot/internal/store"
	"kestrel-trading-bot/internal/types"
)

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// SuccessResponse is the uniform success envelope.
type SuccessResponse struct {
	StatusCode int `json:"statusCode"`
	Item       any `json:"item"`
}

// ErrorResponse is the uniform error envelope. The facade is the single
// place where propagated failures become client-visible.
type ErrorResponse struct {
	StatusCode   int    `json:"statusCode"`
	ErrorMessage string `json:"errorMessage"`
}

// Headliner supplies optional news context for the decision prompt.
type Headliner interface {
	Headlines(ctx context.Context, market string) []string
}

// Server wires aggregator, decider and executor into one request/response
// cycle per trigger. Each run is independent and stateless.
type Server struct {
	cfg        *store.Config
	aggregator *analysis.Aggregator
	decider    interfaces.Decider
	executor   *executor.Executor
	news       Headliner
	httpServer *http.Server
}

func New(cfg *store.Config, aggregator *analysis.Aggregator, decider interfaces.Decider, exec *executor.Executor, news Headliner) *Server {
	s := &Server{
		cfg:        cfg,
		aggregator: aggregator,
		decider:    decider,
		executor:   exec,
		news:       news,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("GET /v1/test", s.handleTrigger)

	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           withCORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "OK"})
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	op := logger.StartOperation(r.Context(), "trading-pipeline")
	ctx := op.Context()

	payload, err := s.aggregator.Snapshot(ctx)
	if err != nil {
		op.EndWithError(err)
		s.writeError(ctx, w, err)
		return
	}

	var contextData map[string]any
	if s.news != nil {
		if headlines := s.news.Headlines(ctx, s.cfg.Market); len(headlines) > 0 {
			contextData = map[string]any{"news_headlines": headlines}
		}
	}

	decision, err := s.decider.Decide(ctx, payload, contextData)
	if err != nil {
		op.EndWithError(err)
		s.writeError(ctx, w, err)
		return
	}

	order, err := s.executor.Execute(ctx, decision)
	if err != nil {
		op.EndWithError(err)
		s.writeError(ctx, w, err)
		return
	}

	op.End()
	writeJSON(w, http.StatusOK, SuccessResponse{
		StatusCode: http.StatusOK,
		Item: types.TradingResult{
			Market:   s.cfg.Market,
			Decision: decision,
			Order:    order,
		},
	})
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, httpx.ErrUnavailable) {
		status = http.StatusBadGateway
	}
	logger.ErrorWithErr(ctx, "Request failed", err, "status", status)
	writeJSON(w, status, ErrorResponse{StatusCode: status, ErrorMessage: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// withCORS applies a permissive CORS policy, matching the original service
// which was called directly from browsers.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
