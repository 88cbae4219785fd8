package observe

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers auth metrics and doubles as the resolver's identity
// sink.
type Collector struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	exchanges   *prometheus.CounterVec
	identified  prometheus.Counter
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "builder_auth_resolutions_total",
			Help: "Identity resolutions by credential path and outcome.",
		}, []string{"path", "outcome"}),
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "builder_auth_federated_exchanges_total",
			Help: "Federated login exchanges by outcome.",
		}, []string{"outcome"}),
		identified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "builder_auth_identified_users_total",
			Help: "Successful user identifications reported by the resolver.",
		}),
	}

	c.registry.MustRegister(c.resolutions, c.exchanges, c.identified)
	return c
}

func (c *Collector) RecordResolution(path, outcome string) {
	c.resolutions.WithLabelValues(path, outcome).Inc()
}

func (c *Collector) RecordExchange(outcome string) {
	c.exchanges.WithLabelValues(outcome).Inc()
}

// Identify implements Sink.
func (c *Collector) Identify(string) {
	c.identified.Inc()
}

// Handler exposes the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ Sink = (*Collector)(nil)
