package runtime

import (
	"fmt"

	configpkg "github.com/drblury/pageflow/internal/runtime/config"
	"github.com/drblury/pageflow/internal/runtime/dispatch"
	errspkg "github.com/drblury/pageflow/internal/runtime/errors"
	loggingpkg "github.com/drblury/pageflow/internal/runtime/logging"
)

// Publishers builds the publisher variants listed in Config.Publishers, in
// that order, all sharing the service's broker publisher.
func (s *Service) Publishers() ([]dispatch.Publisher, error) {
	pubs := make([]dispatch.Publisher, 0, len(s.Conf.Publishers))
	for _, kind := range s.Conf.Publishers {
		pub, err := s.NewPublisher(kind)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}

// NewPublisher builds a single publisher variant by kind: "kafka" for the
// direct client, "stream" for the output binding, "integration" for the
// routed channel.
func (s *Service) NewPublisher(kind string) (dispatch.Publisher, error) {
	switch kind {
	case configpkg.PublisherKafka:
		return dispatch.NewDirectClient(s.publisher)
	case configpkg.PublisherStream:
		return dispatch.NewOutputBinding(s.publisher, s.Conf.StreamOutput, s.Conf.OutputBindings)
	case configpkg.PublisherIntegration:
		return dispatch.NewIntegrationFlow(s.publisher, s.Conf.Topic, correlationIDMiddleware)
	default:
		return nil, fmt.Errorf("%w: %q", errspkg.ErrUnknownPublisherKind, kind)
	}
}

// NewRunner builds a Runner over Publishers using the configured topic and
// iteration count. Runner counters are registered when metrics are enabled.
func (s *Service) NewRunner() (*Runner, error) {
	pubs, err := s.Publishers()
	if err != nil {
		return nil, err
	}
	var metrics *RunnerMetrics
	if s.Conf.MetricsEnabled {
		metrics, err = NewRunnerMetrics(s.metricsRegisterer)
		if err != nil {
			return nil, err
		}
	}
	return NewRunner(RunnerConfig{
		Topic:      s.Conf.Topic,
		Iterations: s.Conf.Iterations,
		Publishers: pubs,
		Logger:     s.Logger.With(loggingpkg.LogFields{"component": "runner"}),
		Metrics:    metrics,
	})
}
