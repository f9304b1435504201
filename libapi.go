package pageflow

import (
	runtimepkg "github.com/drblury/pageflow/internal/runtime"
	configpkg "github.com/drblury/pageflow/internal/runtime/config"
	"github.com/drblury/pageflow/internal/runtime/dispatch"
	errspkg "github.com/drblury/pageflow/internal/runtime/errors"
	idspkg "github.com/drblury/pageflow/internal/runtime/ids"
	jsoncodec "github.com/drblury/pageflow/internal/runtime/jsoncodec"
	loggingpkg "github.com/drblury/pageflow/internal/runtime/logging"
	metadatapkg "github.com/drblury/pageflow/internal/runtime/metadata"
	"github.com/drblury/pageflow/internal/runtime/pageview"
	transportpkg "github.com/drblury/pageflow/transport"
)

type (
	Config              = configpkg.Config
	Service             = runtimepkg.Service
	ServiceDependencies = runtimepkg.ServiceDependencies

	PageView        = pageview.PageView
	PageViewFactory = pageview.Factory
	Publisher       = dispatch.Publisher

	ConsumerConfig   = runtimepkg.ConsumerConfig
	PageViewObserver = runtimepkg.PageViewObserver

	Runner       = runtimepkg.Runner
	RunnerConfig = runtimepkg.RunnerConfig
	RunReport    = runtimepkg.RunReport
	SourceReport = runtimepkg.SourceReport
	ReadyHook    = runtimepkg.ReadyHook

	MiddlewareBuilder      = runtimepkg.MiddlewareBuilder
	MiddlewareRegistration = runtimepkg.MiddlewareRegistration

	HandlerEvent = runtimepkg.HandlerEvent
	HandlerHooks = runtimepkg.HandlerHooks
	HandlerInfo  = runtimepkg.HandlerInfo
	HandlerStats = runtimepkg.HandlerStats

	Metadata = metadatapkg.Metadata

	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger

	PublishError          = errspkg.PublishError
	DeserializationError  = errspkg.DeserializationError
	ProvisioningError     = errspkg.ProvisioningError
	ConfigValidationError = errspkg.ConfigValidationError

	TopicSpec         = transportpkg.TopicSpec
	TopicProvisioner  = transportpkg.TopicProvisioner
	Transport         = transportpkg.Transport
	TransportBuilder  = transportpkg.Builder
	TransportConfig   = transportpkg.Config
	TransportRegistry = transportpkg.Registry
	Capabilities      = transportpkg.Capabilities
)

var (
	LoadConfig    = configpkg.Load
	DefaultConfig = configpkg.Default

	NewService    = runtimepkg.NewService
	TryNewService = runtimepkg.TryNewService

	RegisterPageViewConsumer = runtimepkg.RegisterPageViewConsumer
	NewRunner                = runtimepkg.NewRunner
	NewPageViewFactory       = pageview.NewFactory

	DefaultMiddlewares      = runtimepkg.DefaultMiddlewares
	CorrelationIDMiddleware = runtimepkg.CorrelationIDMiddleware
	LogMessagesMiddleware   = runtimepkg.LogMessagesMiddleware
	TracerMiddleware        = runtimepkg.TracerMiddleware
	MetricsMiddleware       = runtimepkg.MetricsMiddleware
	RecovererMiddleware     = runtimepkg.RecovererMiddleware
	HandlerHooksMiddleware  = runtimepkg.HandlerHooksMiddleware
	LoggingHooks            = runtimepkg.LoggingHooks

	// Import individual transports via: _ "github.com/drblury/pageflow/transport/kafka"
	DefaultTransportRegistry = transportpkg.DefaultRegistry
	RegisterTransport        = transportpkg.Register
	BuildTransport           = transportpkg.Build
	GetCapabilities          = transportpkg.GetCapabilities
	NewMemoryProvisioner     = transportpkg.NewMemoryProvisioner

	Marshal   = jsoncodec.Marshal
	Unmarshal = jsoncodec.Unmarshal

	ErrServiceRequired      = errspkg.ErrServiceRequired
	ErrHandlerRequired      = errspkg.ErrHandlerRequired
	ErrHandlerNameRequired  = errspkg.ErrHandlerNameRequired
	ErrDuplicateHandler     = errspkg.ErrDuplicateHandler
	ErrPublisherRequired    = errspkg.ErrPublisherRequired
	ErrTopicRequired        = errspkg.ErrTopicRequired
	ErrConfigRequired       = errspkg.ErrConfigRequired
	ErrLoggerRequired       = errspkg.ErrLoggerRequired
	ErrBindingNotFound      = errspkg.ErrBindingNotFound
	ErrUnknownPublisherKind = errspkg.ErrUnknownPublisherKind

	NewSlogServiceLogger = loggingpkg.NewSlogServiceLogger
	ParseLogLevel        = loggingpkg.ParseLevel

	NewMessageID = idspkg.NewMessageID
)

const (
	PublisherKafka       = configpkg.PublisherKafka
	PublisherStream      = configpkg.PublisherStream
	PublisherIntegration = configpkg.PublisherIntegration

	DefaultIterations   = runtimepkg.DefaultIterations
	ReceivedTopicHeader = runtimepkg.ReceivedTopicHeader

	MetadataKeyEventSchema = dispatch.MetadataKeyEventSchema
	MetadataKeyChannel     = dispatch.MetadataKeyChannel
)
