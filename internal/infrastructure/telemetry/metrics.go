package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	FaultsCreated    = prometheus.NewCounter(prometheus.CounterOpts{Name: "faults_created_total", Help: "Fault reports created"})
	FaultsUpdated    = prometheus.NewCounter(prometheus.CounterOpts{Name: "faults_updated_total", Help: "Fault reports updated"})
	IngestFailures   = prometheus.NewCounter(prometheus.CounterOpts{Name: "faults_ingest_parse_failures_total", Help: "Quick reports that failed to parse"})
	RateLimitRejects = prometheus.NewCounter(prometheus.CounterOpts{Name: "faults_rate_limit_rejects_total", Help: "Requests rejected by rate limiter"})
)

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			FaultsCreated,
			FaultsUpdated,
			IngestFailures,
			RateLimitRejects,
		)
	})
	return promhttp.Handler()
}
