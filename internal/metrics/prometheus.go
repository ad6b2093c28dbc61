// Package metrics implements the ledger's MetricsCollector on
// Prometheus and serves the scrape endpoint.
package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records settlement outcomes as Prometheus series.
type Collector struct {
	settlements  *prometheus.CounterVec
	settledKobo  *prometheus.CounterVec
	authFailures *prometheus.CounterVec
	errors       *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Collector{
		settlements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "veripay_settlements_total",
			Help: "Settlement attempts by direction, kind and status.",
		}, []string{"direction", "kind", "status"}),
		settledKobo: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "veripay_settled_kobo_total",
			Help: "Total settled amount in kobo by direction and status.",
		}, []string{"direction", "status"}),
		authFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "veripay_authorization_failures_total",
			Help: "Authorization rejections by reason.",
		}, []string{"reason"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "veripay_ledger_errors_total",
			Help: "Ledger faults by operation and error type.",
		}, []string{"operation", "type"}),
	}
}

func (c *Collector) RecordSettlement(direction, kind, status string, amount int64) {
	c.settlements.WithLabelValues(direction, kind, status).Inc()
	c.settledKobo.WithLabelValues(direction, status).Add(float64(amount))
}

func (c *Collector) RecordAuthorizationFailure(reason string) {
	c.authFailures.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordError(operation, errType string) {
	c.errors.WithLabelValues(operation, errType).Inc()
}

// Serve exposes /metrics on its own listener so scrapes never contend
// with API traffic.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("metrics listener stopped: %v", err)
		}
	}()
}
