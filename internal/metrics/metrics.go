// Package metrics provides Prometheus instrumentation for the extended clients.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sqsextended"

type Collector struct {
	// PayloadsOffloaded counts bodies written to object storage, by client operation.
	PayloadsOffloaded *prometheus.CounterVec

	// PayloadBytes tracks the size of offloaded bodies.
	PayloadBytes prometheus.Histogram

	// PayloadsFetched counts bodies read back from object storage on receive.
	PayloadsFetched prometheus.Counter

	// PayloadsDeleted counts objects removed after their queue message was deleted.
	PayloadsDeleted prometheus.Counter

	// Errors counts failed operations by error kind.
	Errors *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves them unregistered.
// Registering twice against the same registry reuses the collectors already there.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(nil)

	c := &Collector{
		PayloadsOffloaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payloads_offloaded_total",
			Help:      "Total number of message bodies offloaded to object storage.",
		}, []string{"operation"}),

		PayloadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payload_bytes",
			Help:      "Size in bytes of offloaded message bodies.",
			Buckets:   prometheus.ExponentialBuckets(256*1024, 2, 10),
		}),

		PayloadsFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payloads_fetched_total",
			Help:      "Total number of offloaded message bodies fetched from object storage.",
		}),

		PayloadsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payloads_deleted_total",
			Help:      "Total number of offloaded message bodies deleted from object storage.",
		}),

		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of failed operations.",
		}, []string{"kind"}),
	}

	if reg == nil {
		return c
	}

	c.PayloadsOffloaded = register(reg, c.PayloadsOffloaded)
	c.PayloadBytes = register(reg, c.PayloadBytes)
	c.PayloadsFetched = register(reg, c.PayloadsFetched)
	c.PayloadsDeleted = register(reg, c.PayloadsDeleted)
	c.Errors = register(reg, c.Errors)

	return c
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}

	return c
}

func (c *Collector) Offloaded(operation string, size int64) {
	c.PayloadsOffloaded.WithLabelValues(operation).Inc()
	c.PayloadBytes.Observe(float64(size))
}

func (c *Collector) Fetched() {
	c.PayloadsFetched.Inc()
}

func (c *Collector) Deleted() {
	c.PayloadsDeleted.Inc()
}

func (c *Collector) Failed(kind string) {
	c.Errors.WithLabelValues(kind).Inc()
}
