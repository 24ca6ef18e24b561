// Package metrics defines the Prometheus instruments exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fittrack"

// Result label values.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultTaken   = "taken"
	ResultDenied  = "denied"
	ResultError   = "error"
)

// Metrics contains the application's Prometheus metrics.
type Metrics struct {
	SignupsTotal            *prometheus.CounterVec
	LoginsTotal             *prometheus.CounterVec
	VerificationsTotal      *prometheus.CounterVec
	VerificationEmailsTotal *prometheus.CounterVec
	PasswordRehashesTotal   prometheus.Counter
	AccountsPrunedTotal     prometheus.Counter
	HTTPRequestsTotal       *prometheus.CounterVec
	HTTPRequestDuration     *prometheus.HistogramVec
}

// NewMetrics creates and registers the application metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SignupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "signups_total",
				Help:      "Total number of signup attempts by result",
			},
			[]string{"result"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Total number of login attempts by result",
			},
			[]string{"result"},
		),
		VerificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "email_verifications_total",
				Help:      "Total number of verification link redemptions by result",
			},
			[]string{"result"},
		),
		VerificationEmailsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "verification_emails_total",
				Help:      "Total number of verification emails by delivery result",
			},
			[]string{"result"},
		),
		PasswordRehashesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "password_rehashes_total",
				Help:      "Total number of stored password hashes upgraded on login",
			},
		),
		AccountsPrunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "accounts_pruned_total",
				Help:      "Total number of unverified accounts removed by the cleanup worker",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}

	reg.MustRegister(
		m.SignupsTotal,
		m.LoginsTotal,
		m.VerificationsTotal,
		m.VerificationEmailsTotal,
		m.PasswordRehashesTotal,
		m.AccountsPrunedTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	// A dedicated registry keeps tests from colliding on the global one.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
