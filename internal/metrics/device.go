// Package metrics provides Prometheus metrics for the LED device and the
// physical click counter.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledbridge"

var (
	deviceOpens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "device",
		Name:      "opens_total",
		Help:      "Device open attempts by result",
	}, []string{"result"})

	deviceReopens = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "device",
		Name:      "reopens_total",
		Help:      "Handle invalidations after a failed reposition",
	})

	deviceWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "device",
		Name:      "writes_total",
		Help:      "Command writes by result",
	}, []string{"result"})

	deviceBytesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "device",
		Name:      "bytes_written_total",
		Help:      "Bytes accepted by the driver",
	})

	deviceReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "device",
		Name:      "reads_total",
		Help:      "Status reads, live or served from the fallback",
	}, []string{"result"})
)

// Label values.
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultLive     = "live"
	ResultFallback = "fallback"
)

// DeviceObserver records device channel activity. It satisfies
// device.Observer.
type DeviceObserver struct{}

// DeviceOpened counts an open attempt.
func (DeviceObserver) DeviceOpened(err error) {
	deviceOpens.WithLabelValues(result(err)).Inc()
}

// DeviceReopened counts a handle invalidation.
func (DeviceObserver) DeviceReopened() {
	deviceReopens.Inc()
}

// CommandWritten counts a write and the bytes it moved.
func (DeviceObserver) CommandWritten(n int, err error) {
	deviceWrites.WithLabelValues(result(err)).Inc()
	if err == nil && n > 0 {
		deviceBytesWritten.Add(float64(n))
	}
}

// StatusRead counts a status read.
func (DeviceObserver) StatusRead(fallback bool) {
	if fallback {
		deviceReads.WithLabelValues(ResultFallback).Inc()
		return
	}
	deviceReads.WithLabelValues(ResultLive).Inc()
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
