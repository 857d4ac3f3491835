package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors the spectator server updates. Each server owns
// its registry so several can run in one process.
type Metrics struct {
	Registry *prometheus.Registry

	resolutions prometheus.Counter
	advance     prometheus.Histogram
	rollovers   prometheus.Counter
	watchers    prometheus.Gauge
	roundID     prometheus.Gauge
}

// NewMetrics creates and registers the server collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "syncbingo",
			Name:      "resolutions_total",
			Help:      "Total number of round resolutions performed.",
		}),
		advance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "syncbingo",
			Name:      "resolve_advance",
			Help:      "Chained rounds skipped per resolution.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		}),
		rollovers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "syncbingo",
			Name:      "rollovers_total",
			Help:      "Total number of round id changes seen by the hub.",
		}),
		watchers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "syncbingo",
			Name:      "watchers",
			Help:      "Connected websocket watchers.",
		}),
		roundID: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "syncbingo",
			Name:      "round_id",
			Help:      "Id of the round resolved on the last hub tick.",
		}),
	}
	m.Registry.MustRegister(m.resolutions, m.advance, m.rollovers, m.watchers, m.roundID)
	return m
}

func (m *Metrics) observeResolve(advanced int) {
	m.resolutions.Inc()
	m.advance.Observe(float64(advanced))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
