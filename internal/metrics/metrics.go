package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds every warchat collector. It is separate from the
	// prometheus default registry so tests can build several sessions.
	Registry = prometheus.NewRegistry()

	linesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warchat_lines_total",
		Help: "Inbound lines by dialect and kind",
	}, []string{"dialect", "kind"})

	eventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warchat_events_total",
		Help: "State update events published by component and event",
	}, []string{"component", "event"})

	transportErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warchat_transport_errors_total",
		Help: "Transport failures by stage",
	}, []string{"stage"})
)

func init() {
	Registry.MustRegister(linesTotal, eventsTotal, transportErrorsTotal)
}

// ObserveLine counts one classified inbound line.
func ObserveLine(dialect, kind string) {
	linesTotal.WithLabelValues(dialect, kind).Inc()
}

// ObserveEvent counts one published state event.
func ObserveEvent(component, event string) {
	eventsTotal.WithLabelValues(component, event).Inc()
}

// ObserveTransportError counts a transport failure at stage (dial, login,
// read, write).
func ObserveTransportError(stage string) {
	transportErrorsTotal.WithLabelValues(stage).Inc()
}

// Handler exposes Registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
