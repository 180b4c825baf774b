// internal/telemetry/telemetry.go
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector captures poll-loop telemetry. Implementations must be cheap:
// hooks run inline with the poll cycle.
type Collector interface {
	IncCycle(model string)
	IncCycleFailure(model, stage string)
	IncTickSkipped(model string)
	ObserveCycleDuration(model string, d time.Duration)
	SetStale(model string, stale bool)
}

type noopCollector struct{}

// Noop returns a collector that discards all metrics.
func Noop() Collector { return noopCollector{} }

func (noopCollector) IncCycle(string)                          {}
func (noopCollector) IncCycleFailure(string, string)           {}
func (noopCollector) IncTickSkipped(string)                    {}
func (noopCollector) ObserveCycleDuration(string, time.Duration) {}
func (noopCollector) SetStale(string, bool)                    {}

// PrometheusCollector exposes poll-loop counters via Prometheus.
type PrometheusCollector struct {
	cycles        *prometheus.CounterVec
	cycleFailures *prometheus.CounterVec
	ticksSkipped  *prometheus.CounterVec
	cycleDuration *prometheus.GaugeVec
	stale         *prometheus.GaugeVec
}

// NewPrometheusCollector registers the bridge metrics with the provided
// registerer. Re-registration reuses the existing collectors.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	cycles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ups_bridge_poll_cycles_total",
		Help: "Number of completed poll cycles per device model.",
	}, []string{"model"})
	if err := registerCounterVec(reg, &cycles); err != nil {
		return nil, err
	}

	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ups_bridge_poll_failures_total",
		Help: "Number of failed poll cycles per device model and failure stage.",
	}, []string{"model", "stage"})
	if err := registerCounterVec(reg, &failures); err != nil {
		return nil, err
	}

	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ups_bridge_ticks_skipped_total",
		Help: "Number of interval ticks skipped because a poll was already in flight.",
	}, []string{"model"})
	if err := registerCounterVec(reg, &skipped); err != nil {
		return nil, err
	}

	duration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ups_bridge_poll_duration_seconds",
		Help: "Duration of the last poll cycle.",
	}, []string{"model"})
	if err := registerGaugeVec(reg, &duration); err != nil {
		return nil, err
	}

	stale := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ups_bridge_snapshot_stale",
		Help: "Whether the last published snapshot is stale (1) or fresh (0).",
	}, []string{"model"})
	if err := registerGaugeVec(reg, &stale); err != nil {
		return nil, err
	}

	return &PrometheusCollector{
		cycles:        cycles,
		cycleFailures: failures,
		ticksSkipped:  skipped,
		cycleDuration: duration,
		stale:         stale,
	}, nil
}

func registerCounterVec(reg prometheus.Registerer, vec **prometheus.CounterVec) error {
	if err := reg.Register(*vec); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return err
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return err
		}
		*vec = existing
	}
	return nil
}

func registerGaugeVec(reg prometheus.Registerer, vec **prometheus.GaugeVec) error {
	if err := reg.Register(*vec); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return err
		}
		existing, ok := already.ExistingCollector.(*prometheus.GaugeVec)
		if !ok {
			return err
		}
		*vec = existing
	}
	return nil
}

func (c *PrometheusCollector) IncCycle(model string) {
	c.cycles.WithLabelValues(model).Inc()
}

func (c *PrometheusCollector) IncCycleFailure(model, stage string) {
	c.cycleFailures.WithLabelValues(model, stage).Inc()
}

func (c *PrometheusCollector) IncTickSkipped(model string) {
	c.ticksSkipped.WithLabelValues(model).Inc()
}

func (c *PrometheusCollector) ObserveCycleDuration(model string, d time.Duration) {
	c.cycleDuration.WithLabelValues(model).Set(d.Seconds())
}

func (c *PrometheusCollector) SetStale(model string, stale bool) {
	v := 0.0
	if stale {
		v = 1.0
	}
	c.stale.WithLabelValues(model).Set(v)
}
