package runtime

import (
	"context"
	"fmt"
	"maps"

	"github.com/drblury/pageflow/internal/runtime/dispatch"
	errspkg "github.com/drblury/pageflow/internal/runtime/errors"
	loggingpkg "github.com/drblury/pageflow/internal/runtime/logging"
	"github.com/drblury/pageflow/internal/runtime/pageview"
)

// DefaultIterations is used when RunnerConfig.Iterations is zero.
const DefaultIterations = 1000

// RunnerConfig configures NewRunner.
type RunnerConfig struct {
	Topic      string
	Iterations int
	Publishers []dispatch.Publisher
	// Factory defaults to a pageview.Factory seeded from the global source.
	Factory *pageview.Factory
	Logger  loggingpkg.ServiceLogger
	// Metrics is optional.
	Metrics *RunnerMetrics
}

// SourceReport counts the outcome of one publisher's sends.
type SourceReport struct {
	Published int
	Failed    int
}

// RunReport summarises a Run, keyed by publisher source.
type RunReport struct {
	Iterations int
	Sources    map[string]SourceReport
}

// Published returns the number of successful publishes across all sources.
func (r RunReport) Published() int {
	total := 0
	for _, s := range r.Sources {
		total += s.Published
	}
	return total
}

// Failed returns the number of failed publishes across all sources.
func (r RunReport) Failed() int {
	total := 0
	for _, s := range r.Sources {
		total += s.Failed
	}
	return total
}

// Runner drives the publishers: every iteration generates one event per
// publisher, tagged with its source, and publishes it to the topic.
type Runner struct {
	topic      string
	iterations int
	publishers []dispatch.Publisher
	factory    *pageview.Factory
	logger     loggingpkg.ServiceLogger
	metrics    *RunnerMetrics
}

// NewRunner validates cfg and returns a Runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Topic == "" {
		return nil, errspkg.ErrTopicRequired
	}
	if cfg.Logger == nil {
		return nil, errspkg.ErrLoggerRequired
	}
	if len(cfg.Publishers) == 0 {
		return nil, errspkg.ErrPublisherRequired
	}
	for _, p := range cfg.Publishers {
		if p == nil {
			return nil, errspkg.ErrPublisherRequired
		}
	}
	if cfg.Iterations < 0 {
		return nil, fmt.Errorf("iterations must not be negative, got %d", cfg.Iterations)
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = DefaultIterations
	}
	if cfg.Factory == nil {
		cfg.Factory = pageview.NewFactory()
	}
	return &Runner{
		topic:      cfg.Topic,
		iterations: cfg.Iterations,
		publishers: cfg.Publishers,
		factory:    cfg.Factory,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}, nil
}

// Run executes the configured iterations sequentially. A failed publish is
// logged and counted and the loop goes on. Cancelling ctx stops the loop
// before the next publish and returns ctx.Err() with the partial report.
func (r *Runner) Run(ctx context.Context) (RunReport, error) {
	sources := make(map[string]SourceReport, len(r.publishers))
	report := func(done int) RunReport {
		return RunReport{Iterations: done, Sources: maps.Clone(sources)}
	}

	r.logger.Info("Starting page view runner", loggingpkg.LogFields{
		"topic":      r.topic,
		"iterations": r.iterations,
		"publishers": len(r.publishers),
	})

	for i := 0; i < r.iterations; i++ {
		for _, pub := range r.publishers {
			if err := ctx.Err(); err != nil {
				return report(i), err
			}

			source := pub.Source()
			event := r.factory.Generate(source)
			counts := sources[source]
			err := pub.Publish(ctx, r.topic, event)
			r.metrics.observe(source, err)
			if err != nil {
				counts.Failed++
				r.logger.Error("Failed to publish page view", err, loggingpkg.LogFields{
					"source":    source,
					"iteration": i,
				})
			} else {
				counts.Published++
			}
			sources[source] = counts
		}
	}

	final := report(r.iterations)
	r.logger.Info("Page view runner finished", loggingpkg.LogFields{
		"published": final.Published(),
		"failed":    final.Failed(),
	})
	return final, nil
}

// Hook adapts the runner to Service.OnReady.
func (r *Runner) Hook() ReadyHook {
	return func(ctx context.Context) error {
		_, err := r.Run(ctx)
		return err
	}
}
