package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/plugin"
	"github.com/prometheus/client_golang/prometheus"

	configpkg "github.com/drblury/pageflow/internal/runtime/config"
	errspkg "github.com/drblury/pageflow/internal/runtime/errors"
	loggingpkg "github.com/drblury/pageflow/internal/runtime/logging"
	"github.com/drblury/pageflow/transport"
)

var routerRun = func(router *message.Router, ctx context.Context) error {
	return router.Run(ctx)
}

// ServiceDependencies holds the optional collaborators that the Service can use.
type ServiceDependencies struct {
	// Registry resolves Config.PubSubSystem. Defaults to transport.DefaultRegistry.
	Registry *transport.Registry
	// MetricsRegisterer receives the Prometheus collectors when metrics are
	// enabled. Defaults to prometheus.DefaultRegisterer.
	MetricsRegisterer prometheus.Registerer

	Middlewares               []MiddlewareRegistration // Appended after the default middleware chain.
	DisableDefaultMiddlewares bool                     // Skips registering the default middleware chain when true.
	Hooks                     HandlerHooks
}

// Service wires a Watermill router, the broker publisher and subscriber, the
// topic provisioner and the middleware chain.
type Service struct {
	Conf   *configpkg.Config
	Logger loggingpkg.ServiceLogger

	publisher   message.Publisher
	subscriber  message.Subscriber
	provisioner transport.TopicProvisioner
	router      *message.Router

	metricsRegisterer prometheus.Registerer

	handlers   []*HandlerInfo
	handlersMu sync.RWMutex

	readyHooks []readyHook
	readyMu    sync.Mutex
	readyOnce  sync.Once

	httpServers   map[int]*http.ServeMux
	httpServersMu sync.Mutex

	closeOnce sync.Once
}

// NewService constructs a Service for the supplied configuration and panics
// when it cannot. Register handlers and ready hooks before calling Start.
func NewService(conf *configpkg.Config, log loggingpkg.ServiceLogger, ctx context.Context, deps ServiceDependencies) *Service {
	s, err := TryNewService(conf, log, ctx, deps)
	if err != nil {
		panic(err)
	}
	return s
}

// TryNewService is NewService returning errors instead of panicking.
func TryNewService(conf *configpkg.Config, log loggingpkg.ServiceLogger, ctx context.Context, deps ServiceDependencies) (*Service, error) {
	if conf == nil {
		return nil, errspkg.ErrConfigRequired
	}
	if log == nil {
		return nil, errspkg.ErrLoggerRequired
	}
	if err := conf.Validate(); err != nil {
		return nil, errspkg.NewConfigValidationError(err)
	}

	wmLogger := loggingpkg.NewWatermillAdapter(log)
	log.Info("Creating event service", loggingpkg.LogFields{
		"pubsub_system": conf.PubSubSystem,
		"config":        conf.String(),
	})

	registry := deps.Registry
	if registry == nil {
		registry = transport.DefaultRegistry
	}
	tr, err := registry.Build(ctx, conf, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("build %s transport: %w", conf.PubSubSystem, err)
	}

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		closeTransport(tr)
		return nil, err
	}
	router.AddPlugin(plugin.SignalsHandler)

	registerer := deps.MetricsRegisterer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	s := &Service{
		Conf:              conf,
		Logger:            log,
		publisher:         tr.Publisher,
		subscriber:        tr.Subscriber,
		provisioner:       tr.Provisioner,
		router:            router,
		metricsRegisterer: registerer,
	}

	if err := s.registerConfiguredMiddlewares(deps); err != nil {
		closeTransport(tr)
		return nil, err
	}
	return s, nil
}

func closeTransport(tr transport.Transport) {
	if tr.Publisher != nil {
		_ = tr.Publisher.Close()
	}
	if tr.Subscriber != nil {
		_ = tr.Subscriber.Close()
	}
}

// Start declares the topic, then runs the router until ctx is cancelled.
// Ready hooks run once on this goroutine as soon as the router is running.
func (s *Service) Start(ctx context.Context) error {
	spec := transport.TopicSpec{
		Name:              s.Conf.Topic,
		Partitions:        s.Conf.TopicPartitions,
		ReplicationFactor: s.Conf.TopicReplicationFactor,
	}
	if err := s.provisioner.Declare(ctx, spec); err != nil {
		return errspkg.NewProvisioningError(spec.Name, err)
	}
	s.Logger.Info("Topic declared", loggingpkg.LogFields{
		"topic":              spec.Name,
		"partitions":         spec.Partitions,
		"replication_factor": spec.ReplicationFactor,
	})

	s.startHTTPServers(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- routerRun(s.router, ctx)
	}()

	select {
	case <-s.router.Running():
		s.runReadyHooks(ctx)
	case err := <-errCh:
		return err
	}
	return <-errCh
}

// Publisher returns the broker publisher, decorated with metrics when enabled.
func (s *Service) Publisher() message.Publisher {
	return s.publisher
}

// Provisioner returns the topic provisioner used by Start.
func (s *Service) Provisioner() transport.TopicProvisioner {
	return s.provisioner
}

// Close stops the router and closes the broker clients.
func (s *Service) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		if err := s.router.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.subscriber.Close(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

func (s *Service) registerConfiguredMiddlewares(deps ServiceDependencies) error {
	var defaults []MiddlewareRegistration
	if !deps.DisableDefaultMiddlewares {
		defaults = DefaultMiddlewares()
	}
	registrations := make([]MiddlewareRegistration, 0, len(defaults)+len(deps.Middlewares)+1)
	registrations = append(registrations, defaults...)
	registrations = append(registrations, HandlerHooksMiddleware(deps.Hooks.Merge(s.statsHooks())))
	registrations = append(registrations, deps.Middlewares...)

	for _, reg := range registrations {
		if err := s.RegisterMiddleware(reg); err != nil {
			name := reg.Name
			if name == "" {
				name = "anonymous_middleware"
			}
			return fmt.Errorf("failed to register middleware %s: %w", name, err)
		}
	}
	return nil
}

// RegisterHTTPHandler mounts handler on the server listening on port. Servers
// are started by Start.
func (s *Service) RegisterHTTPHandler(port int, pattern string, handler http.Handler) {
	s.httpServersMu.Lock()
	defer s.httpServersMu.Unlock()

	if s.httpServers == nil {
		s.httpServers = make(map[int]*http.ServeMux)
	}

	mux, ok := s.httpServers[port]
	if !ok {
		mux = http.NewServeMux()
		s.httpServers[port] = mux
	}

	mux.Handle(pattern, handler)
}

func (s *Service) startHTTPServers(ctx context.Context) {
	s.httpServersMu.Lock()
	defer s.httpServersMu.Unlock()

	for port, mux := range s.httpServers {
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		s.Logger.Info("Starting HTTP server", loggingpkg.LogFields{"address": srv.Addr})
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.Logger.Error("Failed to start HTTP server", err, loggingpkg.LogFields{"address": srv.Addr})
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}
}
