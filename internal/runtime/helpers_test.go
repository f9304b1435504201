package runtime

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"

	configpkg "github.com/drblury/pageflow/internal/runtime/config"
	loggingpkg "github.com/drblury/pageflow/internal/runtime/logging"
	"github.com/drblury/pageflow/transport"
)

func newTestSlogLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestLogger() loggingpkg.ServiceLogger {
	return loggingpkg.NewSlogServiceLogger(newTestSlogLogger())
}

type testPublisher struct {
	mu       sync.Mutex
	messages map[string][]*message.Message
	err      error
	closed   bool
}

func (p *testPublisher) Publish(topic string, messages ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if p.messages == nil {
		p.messages = make(map[string][]*message.Message)
	}
	p.messages[topic] = append(p.messages[topic], messages...)
	return nil
}

func (p *testPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *testPublisher) Messages(topic string) []*message.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*message.Message(nil), p.messages[topic]...)
}

type testSubscriber struct {
	err    error
	closed bool
}

func (s *testSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (s *testSubscriber) Close() error {
	s.closed = true
	return nil
}

// recordingLogger keeps every line written through it, including children
// created with With.
type recordingLogger struct {
	rec    *logRecorder
	fields loggingpkg.LogFields
}

type logRecorder struct {
	mu    sync.Mutex
	lines []logLine
}

type logLine struct {
	level  string
	msg    string
	err    error
	fields loggingpkg.LogFields
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{rec: &logRecorder{}}
}

func (l *recordingLogger) With(fields loggingpkg.LogFields) loggingpkg.ServiceLogger {
	merged := make(loggingpkg.LogFields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{rec: l.rec, fields: merged}
}

func (l *recordingLogger) Debug(msg string, fields loggingpkg.LogFields) {
	l.append("debug", msg, nil, fields)
}

func (l *recordingLogger) Info(msg string, fields loggingpkg.LogFields) {
	l.append("info", msg, nil, fields)
}

func (l *recordingLogger) Error(msg string, err error, fields loggingpkg.LogFields) {
	l.append("error", msg, err, fields)
}

func (l *recordingLogger) Trace(msg string, fields loggingpkg.LogFields) {
	l.append("trace", msg, nil, fields)
}

func (l *recordingLogger) append(level, msg string, err error, fields loggingpkg.LogFields) {
	merged := make(loggingpkg.LogFields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	l.rec.mu.Lock()
	defer l.rec.mu.Unlock()
	l.rec.lines = append(l.rec.lines, logLine{level: level, msg: msg, err: err, fields: merged})
}

func (l *recordingLogger) Lines() []logLine {
	l.rec.mu.Lock()
	defer l.rec.mu.Unlock()
	return append([]logLine(nil), l.rec.lines...)
}

func (l *recordingLogger) Messages(level string) []string {
	var out []string
	for _, line := range l.Lines() {
		if line.level == level {
			out = append(out, line.msg)
		}
	}
	return out
}

// newTestService builds a Service around in-memory fakes without going
// through the transport registry.
func newTestService(t *testing.T) *Service {
	t.Helper()
	return newTestServiceWithLogger(t, newTestLogger())
}

func newTestServiceWithLogger(t *testing.T, log loggingpkg.ServiceLogger) *Service {
	t.Helper()
	wmLogger := loggingpkg.NewWatermillAdapter(log)
	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		t.Fatalf("router init failed: %v", err)
	}
	conf := configpkg.Default()
	return &Service{
		Conf:              &conf,
		Logger:            log,
		router:            router,
		publisher:         &testPublisher{},
		subscriber:        &testSubscriber{},
		provisioner:       transport.NewMemoryProvisioner(),
		metricsRegisterer: prometheus.NewRegistry(),
	}
}

// testRegistry returns a registry holding a single "fake" transport backed by
// pub and sub.
func testRegistry(pub message.Publisher, sub message.Subscriber, prov transport.TopicProvisioner) *transport.Registry {
	reg := transport.NewRegistry()
	reg.Register("fake", func(ctx context.Context, cfg transport.Config, _ watermill.LoggerAdapter) (transport.Transport, error) {
		return transport.Transport{Publisher: pub, Subscriber: sub, Provisioner: prov}, nil
	})
	return reg
}
