/*
Package runtime wires the page view producer and consumer onto a broker.

# Architecture Overview

The runtime is built on Watermill. A Service owns the broker transport, a
router with the middleware chain, and the topic provisioner. Page views are
produced by a Runner through the publisher variants in the dispatch package
and consumed by a router handler that logs them.

# Package Structure

## Core Service (service.go)

The Service struct wires together:
  - Message router (Watermill) with the signals plugin
  - Publisher and subscriber from the transport registry
  - Topic declaration before the router starts
  - Ready hooks run once the router is consuming
  - HTTP servers for metrics and handler stats

## Consumer (consumer.go, registration.go)

RegisterPageViewConsumer subscribes the logging handler. Handler stats are
collected through HandlerHooks and served on /api/handlers.

## Middleware (middleware.go, hooks.go)

  - CorrelationID: Ensures message traceability
  - LogMessages: Debug logging of message payloads
  - Tracer: OpenTelemetry consumer spans
  - Metrics: Prometheus metrics collection
  - Recoverer: Panic recovery
  - HandlerHooks: Lifecycle callbacks around each handler

## Producing (publishers.go, runner.go)

Service.Publishers builds the configured variants; Runner drives them for a
fixed number of iterations.

# Sub-packages

  - config/: Service configuration loaded from the environment
  - dispatch/: Publisher variants, DirectChannel, OutboundAdapter
  - errors/: Sentinel errors and error types
  - ids/: ULID generation for message IDs
  - jsoncodec/: JSON marshaling
  - logging/: Logger interface and adapters
  - metadata/: Message header utilities
  - pageview/: The PageView event and its factory

# Usage Example

	cfg, err := pageflow.LoadConfig()
	if err != nil {
		return err
	}

	svc := pageflow.NewService(&cfg, logger, ctx, pageflow.ServiceDependencies{})
	defer svc.Close()

	if _, err := pageflow.RegisterPageViewConsumer(svc, pageflow.ConsumerConfig{}); err != nil {
		return err
	}

	runner, err := svc.NewRunner()
	if err != nil {
		return err
	}
	_ = svc.OnReady("runner", runner.Hook())

	return svc.Start(ctx)
*/
package runtime
