package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smazurov/ledbridge/internal/events"
)

var ledCommands = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "led",
	Name:      "commands_total",
	Help:      "LED commands by source and result",
}, []string{"source", "result"})

// EventSubscriber is the part of the event bus the metrics need.
type EventSubscriber interface {
	Subscribe(handler any) func()
}

// SubscribeCommands counts LEDCommandEvents published on bus.
func SubscribeCommands(bus EventSubscriber) func() {
	return bus.Subscribe(func(e events.LEDCommandEvent) {
		res := ResultSuccess
		if e.Code < 0 {
			res = ResultError
		}
		ledCommands.WithLabelValues(e.Source, res).Inc()
	})
}
