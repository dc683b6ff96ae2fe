// Package httptransport assembles the public HTTP surface: middleware chain,
// health and metrics endpoints, and the domain handlers.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"archiva/internal/platform/middleware"
	"archiva/pkg/platform/httputil"
)

// Registrar mounts a handler group on the router.
type Registrar interface {
	Register(r chi.Router)
}

// Deps carries everything the router needs. TokenValidator may be nil in
// tests to skip authentication.
type Deps struct {
	Logger         *slog.Logger
	TokenValidator middleware.TokenValidator
	Handlers       []Registrar
	RequestTimeout time.Duration
	Health         func() error
}

// NewRouter builds the chi router with the standard middleware chain.
func NewRouter(deps Deps) http.Handler {
	timeout := deps.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(timeout))

	r.Get("/healthz", healthHandler(deps.Health))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		if deps.TokenValidator != nil {
			r.Use(middleware.RequireAuth(deps.TokenValidator, deps.Logger))
		}
		for _, h := range deps.Handlers {
			h.Register(r)
		}
	})

	return r
}

func healthHandler(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
