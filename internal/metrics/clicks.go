package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	physicalClicks = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "physical_clicks",
		Help:      "Physical button clicks reported by the coordinator",
	})

	// Last value for API reads without scraping the registry.
	physicalClicksValue atomic.Int64
)

// SetPhysicalClicks records the latest click count.
func SetPhysicalClicks(count int) {
	physicalClicks.Set(float64(count))
	physicalClicksValue.Store(int64(count))
}

// PhysicalClicks returns the last recorded click count.
func PhysicalClicks() int {
	return int(physicalClicksValue.Load())
}
