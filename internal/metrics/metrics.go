package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the exposed gauge table of the cardinality generator. One
// gauge per (job, instance, status_code, method) tuple; each tick replaces
// every value wholesale, so readers only ever see whole last-written scalars.
type Metrics struct {
	HTTPRequestsQPS *prometheus.GaugeVec
}

// NewMetrics registers the gauge table with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		HTTPRequestsQPS: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_requests_qps",
			Help: "Synthetic HTTP request QPS",
		}, []string{"job", "instance", "status_code", "method"}),
	}
}
