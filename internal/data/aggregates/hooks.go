package aggregates

import "time"

// Hooks receives one ObserveOperation per aggregate write, plus a counter
// bump when the write lost a race or hit a transient storage error.
type Hooks interface {
	ObserveOperation(op, outcome string, dur time.Duration)
	IncConflict(op string)
	IncRetry(op string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

// AggregateMetrics is implemented by *observability.Metrics.
type AggregateMetrics interface {
	ObserveAggregateOperation(op, status string, dur time.Duration)
	IncAggregateConflict(op string)
	IncAggregateRetry(op string)
}

// metricsHooks adapts AggregateMetrics to Hooks.
type metricsHooks struct{ AggregateMetrics }

func (h metricsHooks) ObserveOperation(op, outcome string, dur time.Duration) {
	h.ObserveAggregateOperation(op, outcome, dur)
}
func (h metricsHooks) IncConflict(op string) { h.IncAggregateConflict(op) }
func (h metricsHooks) IncRetry(op string)    { h.IncAggregateRetry(op) }

// NewMetricsHooks returns no-op hooks for a nil m.
func NewMetricsHooks(m AggregateMetrics) Hooks {
	if m == nil {
		return noopHooks{}
	}
	return metricsHooks{m}
}
