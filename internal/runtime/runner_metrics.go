package runtime

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// RunnerMetrics counts runner publishes per source in Prometheus.
type RunnerMetrics struct {
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
}

func newRunnerCounterVec(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "runner",
			Name:      name,
			Help:      help,
		},
		[]string{"source"},
	)
}

// NewRunnerMetrics registers the runner counters on reg. Counters that are
// already registered are reused.
func NewRunnerMetrics(reg prometheus.Registerer) (*RunnerMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	published, err := registerCounterVec(reg, newRunnerCounterVec("published_total", "Page views handed to the broker."))
	if err != nil {
		return nil, err
	}
	failed, err := registerCounterVec(reg, newRunnerCounterVec("failed_total", "Page views the broker did not accept."))
	if err != nil {
		return nil, err
	}
	return &RunnerMetrics{published: published, failed: failed}, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing, nil
		}
	}
	return nil, err
}

func (m *RunnerMetrics) observe(source string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.failed.WithLabelValues(source).Inc()
		return
	}
	m.published.WithLabelValues(source).Inc()
}
