package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application. Each instance
// owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	UsersRegistered   prometheus.Counter
	OTPIssued         prometheus.Counter
	OTPDispatchErrors prometheus.Counter
	OTPVerifications  *prometheus.CounterVec
	IdentityChecks    *prometheus.CounterVec
	MessagesSent      *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		UsersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "raksha_users_registered_total",
			Help: "Total number of accounts created",
		}),
		OTPIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "raksha_otp_issued_total",
			Help: "Total number of OTP codes issued",
		}),
		OTPDispatchErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "raksha_otp_dispatch_errors_total",
			Help: "OTP codes stored but not delivered",
		}),
		OTPVerifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "raksha_otp_verifications_total",
			Help: "OTP verification attempts by outcome",
		}, []string{"outcome"}),
		IdentityChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "raksha_identity_checks_total",
			Help: "National ID verification calls by outcome",
		}, []string{"outcome"}),
		MessagesSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "raksha_messages_sent_total",
			Help: "Outbound messages by kind and outcome",
		}, []string{"kind", "outcome"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "raksha_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Outcome turns a boolean into the "ok"/"fail" label value.
func Outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "fail"
}
