// Package health reports whether the server's dependencies are reachable.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

type Handler struct {
	checks  map[string]Checker
	details map[string]func() any
	logger  *slog.Logger
	timeout time.Duration
}

func NewHandler(logger *slog.Logger, checks map[string]Checker) *Handler {
	return &Handler{checks: checks, logger: logger, timeout: 3 * time.Second}
}

// WithDetail adds an informational section to every report. It never
// affects the overall status.
func (h *Handler) WithDetail(name string, fn func() any) *Handler {
	if h.details == nil {
		h.details = make(map[string]func() any)
	}
	h.details[name] = fn
	return h
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.check)
	return r
}

type Result struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latencyMs"`
}

type Response struct {
	Status  string            `json:"status"`
	Checks  map[string]Result `json:"checks"`
	Details map[string]any    `json:"details,omitempty"`
}

// check runs every checker concurrently under one deadline.
func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var (
		mu   sync.Mutex
		resp = Response{Status: "ok", Checks: make(map[string]Result, len(h.checks))}
	)
	var g errgroup.Group
	for name, c := range h.checks {
		g.Go(func() error {
			start := time.Now()
			err := c.Check(ctx)
			res := Result{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
			if err != nil {
				h.logger.Error("health check failed", "name", name, "error", err)
				res.Status = "error"
			}

			mu.Lock()
			defer mu.Unlock()
			resp.Checks[name] = res
			if err != nil {
				resp.Status = "degraded"
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(h.details) > 0 {
		resp.Details = make(map[string]any, len(h.details))
		for name, fn := range h.details {
			resp.Details[name] = fn()
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
