package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the prometheus collectors shared by every dispatcher of a
// process, each series is labeled with the network.
type Metrics struct {
	Events    *prometheus.CounterVec
	Queries   *prometheus.CounterVec
	Truncated *prometheus.CounterVec
	Users     *prometheus.GaugeVec
	Channels  *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ircstate_events_total",
				Help: "Events that changed or could change the state",
			},
			[]string{"network", "command"},
		),
		Queries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ircstate_queries_total",
				Help: "Queries sent to the server to fill in the state",
			},
			[]string{"network", "command"},
		),
		Truncated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ircstate_mode_truncated_total",
				Help: "Mode changes that ran out of parameters",
			},
			[]string{"network"},
		),
		Users: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ircstate_users",
				Help: "Users currently tracked",
			},
			[]string{"network"},
		),
		Channels: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ircstate_channels",
				Help: "Channels currently tracked",
			},
			[]string{"network"},
		),
	}
}

func (m *Metrics) event(network, command string) {
	m.Events.WithLabelValues(network, command).Inc()
}

func (m *Metrics) query(network, command string) {
	m.Queries.WithLabelValues(network, command).Inc()
}

func (m *Metrics) truncated(network string) {
	m.Truncated.WithLabelValues(network).Inc()
}

func (m *Metrics) size(network string, users, channels int) {
	m.Users.WithLabelValues(network).Set(float64(users))
	m.Channels.WithLabelValues(network).Set(float64(channels))
}

// forget drops the series of a network that went away.
func (m *Metrics) forget(network string) {
	m.Users.DeleteLabelValues(network)
	m.Channels.DeleteLabelValues(network)
}
