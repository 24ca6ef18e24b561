// Package httpapi exposes the fittrack App over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fittrack/fittrack"
	"github.com/fittrack/fittrack/internal/logging"
	"github.com/fittrack/fittrack/internal/metrics"
	"github.com/fittrack/fittrack/middleware"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes = 1 << 20

// Options configures the router.
type Options struct {
	// Logger receives request and error logs. Logs are discarded if nil.
	Logger *slog.Logger

	// Metrics records per-route request counts and latency. Optional.
	Metrics *metrics.Metrics

	// Registry is served on /metrics. The route is absent if nil.
	Registry *prometheus.Registry

	// MaxBodyBytes caps request bodies. DefaultMaxBodyBytes if zero.
	MaxBodyBytes int64
}

type handler struct {
	app          *fittrack.App
	logger       *slog.Logger
	maxBodyBytes int64
}

// NewRouter returns the HTTP handler for app.
func NewRouter(app *fittrack.App, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	h := &handler{
		app:          app,
		logger:       opts.Logger,
		maxBodyBytes: opts.MaxBodyBytes,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(echoRequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(opts.Logger))
	if opts.Metrics != nil {
		r.Use(instrument(opts.Metrics))
	}
	r.Use(chimw.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Get("/healthz", h.healthz)
	if opts.Registry != nil {
		r.Handle("/metrics", metrics.Handler(opts.Registry))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.signup)
		r.Post("/login", h.login)
		r.Get("/verify", h.verify)
		r.Post("/verify/resend", h.resend)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(app, &middleware.Config{
			ErrorHandler: authError,
		}))
		r.Get("/progress", h.progress)
		r.Get("/me", h.me)
	})

	return r
}
