// Package rabbitmq carries page views over RabbitMQ. The page-view topic is a
// durable fanout exchange and every consumer group reads from its own durable
// queue bound to it, so members of one group split the stream.
package rabbitmq

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/v3/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/pageflow/transport"
)

// TransportName is the PubSubSystem value that selects RabbitMQ.
const TransportName = "rabbitmq"

// ConnectionFactory opens the shared AMQP connection. Tests replace it.
var ConnectionFactory = func(cfg amqp.ConnectionConfig, logger watermill.LoggerAdapter) (*amqp.ConnectionWrapper, error) {
	return amqp.NewConnection(cfg, logger)
}

// PublisherFactory builds the page-view publisher. Tests replace it.
var PublisherFactory = func(cfg amqp.Config, logger watermill.LoggerAdapter, conn *amqp.ConnectionWrapper) (message.Publisher, error) {
	return amqp.NewPublisherWithConnection(cfg, logger, conn)
}

// SubscriberFactory builds the consumer-group subscriber. Tests replace it.
var SubscriberFactory = func(cfg amqp.Config, logger watermill.LoggerAdapter, conn *amqp.ConnectionWrapper) (message.Subscriber, error) {
	return amqp.NewSubscriberWithConnection(cfg, logger, conn)
}

func init() {
	Register()
}

func Register() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.RabbitMQCapabilities)
}

// QueueName is the queue a consumer group reads topic from. Without a group
// every consumer shares the queue named after the topic.
func QueueName(topic, group string) string {
	if group == "" {
		return topic
	}
	return topic + "_" + group
}

// pageViewConfig waits for broker confirms so a page view only counts as
// published once RabbitMQ accepted it.
func pageViewConfig(url, group string) amqp.Config {
	cfg := amqp.NewDurablePubSubConfig(url, func(topic string) string {
		return QueueName(topic, group)
	})
	cfg.Publish.ConfirmDelivery = true
	return cfg
}

// Build connects once and shares the connection between the publisher and
// the consumer-group subscriber.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (transport.Transport, error) {
	url := cfg.GetRabbitMQURL()
	amqpConfig := pageViewConfig(url, cfg.GetKafkaConsumerGroup())

	conn, err := ConnectionFactory(amqp.ConnectionConfig{
		AmqpURI:   url,
		Reconnect: amqp.DefaultReconnectConfig(),
	}, logger)
	if err != nil {
		return transport.Transport{}, err
	}

	publisher, err := PublisherFactory(amqpConfig, logger, conn)
	if err != nil {
		return transport.Transport{}, err
	}

	subscriber, err := SubscriberFactory(amqpConfig, logger, conn)
	if err != nil {
		_ = publisher.Close()
		return transport.Transport{}, err
	}

	return transport.Transport{
		Publisher:  publisher,
		Subscriber: subscriber,
	}, nil
}

func Capabilities() transport.Capabilities {
	return transport.RabbitMQCapabilities
}
