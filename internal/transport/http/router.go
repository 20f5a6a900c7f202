// Package httptransport assembles the HTTP surface of the ledger service.
// It owns middleware ordering and route mounting; all business logic lives in
// the domain handlers it mounts.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	compliancehandler "tokengate/internal/compliance/handler"
	ledgerhandler "tokengate/internal/ledger/handler"
	"tokengate/internal/platform/health"
	"tokengate/internal/platform/middleware"
	roleshandler "tokengate/internal/roles/handler"
)

// Handlers groups the domain handlers mounted behind authentication.
type Handlers struct {
	Ledger     *ledgerhandler.Handler
	Compliance *compliancehandler.Handler
	Roles      *roleshandler.Handler
	Health     *health.Handler
}

// Config tunes the transport middleware stack.
type Config struct {
	RequestTimeout time.Duration

	// RatePerSecond caps requests per authenticated caller; 0 disables limiting.
	RatePerSecond float64
	RateBurst     int
}

// NewRouter wires all endpoints with the middleware stack.
//
// Health probes and Prometheus metrics stay outside authentication so
// orchestrators and scrapers can reach them. Everything else requires a
// bearer token; the rate limiter sits after auth so buckets key on the
// caller's account rather than the load balancer's address.
func NewRouter(cfg Config, h Handlers, validator middleware.TokenValidator, logger *slog.Logger) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.ContentTypeJSON)

	if h.Health != nil {
		h.Health.Register(r)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		r.Use(middleware.RateLimit(cfg.RatePerSecond, cfg.RateBurst, logger))

		h.Ledger.Register(r)
		h.Compliance.Register(r)
		h.Roles.Register(r)
	})

	return r
}
