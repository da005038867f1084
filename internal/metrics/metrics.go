package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "listings"

// Registry holds every metric the server exports.
var Registry = prometheus.NewRegistry()

// AppInfo exposes build metadata as labels; the value is always 1.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// HealthStatus is 1 when the last health check reached the database, 0 otherwise.
var HealthStatus = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "health_status",
		Help:      "Database reachability at the last health check (1=ok, 0=error)",
	},
)

// Auth metrics
var (
	AuthSignups = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_signups_total",
			Help:      "Total number of successful signups",
		},
	)

	// AuthLogins counts login attempts by result: success, unknown_user, bad_password, invalid.
	AuthLogins = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_logins_total",
			Help:      "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	// AuthDenials counts rejected requests on protected routes by reason:
	// missing_token, invalid_token, expired_token, forbidden.
	AuthDenials = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_denials_total",
			Help:      "Total number of requests rejected by authentication or role checks",
		},
		[]string{"reason"},
	)
)

// ResourceWrites counts successful mutations by resource (venue, event) and operation.
var ResourceWrites = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resource_writes_total",
		Help:      "Total number of successful create/update/delete operations",
	},
	[]string{"resource", "operation"},
)

var initOnce sync.Once

// Init registers the runtime collectors and sets the build info. Safe to call more than once.
func Init(version, commit, buildDate string) {
	initOnce.Do(func() {
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
	AppInfo.Reset()
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
