package runtime

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/pageflow/internal/runtime/dispatch"
	errspkg "github.com/drblury/pageflow/internal/runtime/errors"
	"github.com/drblury/pageflow/internal/runtime/pageview"
)

type fakeDispatcher struct {
	mu      sync.Mutex
	source  string
	topics  []string
	events  []pageview.PageView
	failOn  map[int]bool
	onCall  func(n int)
	attempt int
}

func (f *fakeDispatcher) Source() string { return f.source }

func (f *fakeDispatcher) Publish(ctx context.Context, topic string, event pageview.PageView) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempt++
	if f.onCall != nil {
		f.onCall(f.attempt)
	}
	if f.failOn[f.attempt] {
		return errspkg.NewPublishError(topic, f.source, errors.New("broker unavailable"))
	}
	f.topics = append(f.topics, topic)
	f.events = append(f.events, event)
	return nil
}

// sequenceSource replays fixed draws in a loop.
type sequenceSource struct {
	draws []int
	i     int
}

func (s *sequenceSource) IntN(n int) int {
	v := s.draws[s.i%len(s.draws)] % n
	s.i++
	return v
}

func TestNewRunnerValidatesConfig(t *testing.T) {
	pub := &fakeDispatcher{source: "kafka"}
	logger := newTestLogger()

	tests := []struct {
		name string
		cfg  RunnerConfig
		err  error
	}{
		{name: "missing topic", cfg: RunnerConfig{Publishers: []dispatch.Publisher{pub}, Logger: logger}, err: errspkg.ErrTopicRequired},
		{name: "missing logger", cfg: RunnerConfig{Topic: "pv_topic", Publishers: []dispatch.Publisher{pub}}, err: errspkg.ErrLoggerRequired},
		{name: "no publishers", cfg: RunnerConfig{Topic: "pv_topic", Logger: logger}, err: errspkg.ErrPublisherRequired},
		{name: "nil publisher", cfg: RunnerConfig{Topic: "pv_topic", Logger: logger, Publishers: []dispatch.Publisher{nil}}, err: errspkg.ErrPublisherRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(tt.cfg)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err := NewRunner(RunnerConfig{Topic: "pv_topic", Logger: logger, Publishers: []dispatch.Publisher{pub}, Iterations: -1})
	assert.Error(t, err)

	r, err := NewRunner(RunnerConfig{Topic: "pv_topic", Logger: logger, Publishers: []dispatch.Publisher{pub}})
	require.NoError(t, err)
	assert.Equal(t, DefaultIterations, r.iterations)
}

func TestRunnerPublishesEveryIterationInOrder(t *testing.T) {
	var order []string
	record := func(source string) func(int) {
		return func(int) { order = append(order, source) }
	}
	direct := &fakeDispatcher{source: "kafka"}
	direct.onCall = record("kafka")
	routed := &fakeDispatcher{source: "integration"}
	routed.onCall = record("integration")
	binding := &fakeDispatcher{source: "stream"}
	binding.onCall = record("stream")

	r, err := NewRunner(RunnerConfig{
		Topic:      "pv_topic",
		Iterations: 3,
		Publishers: []dispatch.Publisher{direct, routed, binding},
		Factory:    pageview.NewFactory(pageview.WithRandSource(&sequenceSource{draws: []int{0, 1, 2, 3, 4}})),
		Logger:     newTestLogger(),
	})
	require.NoError(t, err)

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Iterations)
	assert.Equal(t, 9, report.Published())
	assert.Equal(t, 0, report.Failed())
	assert.Equal(t, []string{
		"kafka", "integration", "stream",
		"kafka", "integration", "stream",
		"kafka", "integration", "stream",
	}, order)

	for _, pub := range []*fakeDispatcher{direct, routed, binding} {
		assert.Len(t, pub.events, 3)
		for i, ev := range pub.events {
			assert.Equal(t, pub.source, ev.Source)
			assert.NoError(t, ev.Validate())
			assert.Equal(t, "pv_topic", pub.topics[i])
		}
	}
}

func TestRunnerContinuesAfterPublishFailure(t *testing.T) {
	log := newRecordingLogger()
	direct := &fakeDispatcher{source: "kafka", failOn: map[int]bool{2: true}}
	binding := &fakeDispatcher{source: "stream"}

	r, err := NewRunner(RunnerConfig{
		Topic:      "pv_topic",
		Iterations: 3,
		Publishers: []dispatch.Publisher{direct, binding},
		Logger:     log,
	})
	require.NoError(t, err)

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceReport{Published: 2, Failed: 1}, report.Sources["kafka"])
	assert.Equal(t, SourceReport{Published: 3}, report.Sources["stream"])

	var failures []logLine
	for _, line := range log.Lines() {
		if line.level == "error" {
			failures = append(failures, line)
		}
	}
	require.Len(t, failures, 1)
	var pubErr *errspkg.PublishError
	assert.ErrorAs(t, failures[0].err, &pubErr)
	assert.Equal(t, "kafka", failures[0].fields["source"])
}

func TestRunnerStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	direct := &fakeDispatcher{source: "kafka"}
	direct.onCall = func(n int) {
		if n == 2 {
			cancel()
		}
	}

	r, err := NewRunner(RunnerConfig{
		Topic:      "pv_topic",
		Iterations: 1000,
		Publishers: []dispatch.Publisher{direct},
		Logger:     newTestLogger(),
	})
	require.NoError(t, err)

	report, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, report.Sources["kafka"].Published)
	assert.Equal(t, 2, report.Iterations)
	assert.Len(t, direct.events, 2)
}

func TestRunnerHookReturnsRunError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := NewRunner(RunnerConfig{
		Topic:      "pv_topic",
		Iterations: 1,
		Publishers: []dispatch.Publisher{&fakeDispatcher{source: "kafka"}},
		Logger:     newTestLogger(),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, r.Hook()(ctx), context.Canceled)
	assert.NoError(t, r.Hook()(context.Background()))
}

func TestRunnerRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewRunnerMetrics(reg)
	require.NoError(t, err)

	_, err = NewRunnerMetrics(reg)
	require.NoError(t, err, "registering twice reuses the collectors")

	r, err := NewRunner(RunnerConfig{
		Topic:      "pv_topic",
		Iterations: 4,
		Publishers: []dispatch.Publisher{&fakeDispatcher{source: "kafka", failOn: map[int]bool{1: true}}},
		Logger:     newTestLogger(),
		Metrics:    metrics,
	})
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3.0, counterValue(t, reg, "pageflow_runner_published_total", "kafka"))
	assert.Equal(t, 1.0, counterValue(t, reg, "pageflow_runner_failed_total", "kafka"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, source string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "source" && label.GetValue() == source {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	t.Fatalf("counter %s{source=%q} not found", name, source)
	return 0
}
