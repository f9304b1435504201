// Package pageflow produces and consumes page view events on top of Watermill.
// It reads the target transport (Kafka, RabbitMQ, NATS, or Go Channels) from
// Config, declares the page view topic, bootstraps the Watermill router, and
// registers the default middleware chain for correlation IDs, logging,
// tracing, Prometheus metrics, and panic recovery.
//
// Three publishers emit the same event shape to the same topic:
//   - kafka: a direct client writing straight to the broker publisher
//   - stream: a named output binding resolved to a topic through Config
//   - integration: a routed in-process channel drained by an outbound adapter
//
// RegisterPageViewConsumer attaches a handler in the configured consumer group
// that logs every event together with its headers. Service.NewRunner builds a
// Runner that publishes one generated event per publisher per iteration;
// register its Hook with Service.OnReady so it starts once the router runs.
//
// # Transports
//
// Transports are plugged in through the registry in package transport:
//   - channel: In-memory Go channels for tests and local runs
//   - kafka: Sarama-based publisher and consumer group with topic provisioning
//   - rabbitmq: AMQP durable queues, one queue per consumer group
//   - nats: NATS Core subscriptions with queue groups
//
// Import transport/transports to register all of them at once.
package pageflow
