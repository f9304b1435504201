package runtime

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/drblury/pageflow/internal/runtime/errors"
	loggingpkg "github.com/drblury/pageflow/internal/runtime/logging"
	metadatapkg "github.com/drblury/pageflow/internal/runtime/metadata"
	"github.com/drblury/pageflow/internal/runtime/pageview"
	kafkatransport "github.com/drblury/pageflow/transport/kafka"
)

const (
	// DefaultConsumerName names the page view handler on the router.
	DefaultConsumerName = "pageview-consumer"
	// ReceivedTopicHeader carries the topic a page view was consumed from.
	ReceivedTopicHeader = "received_topic"

	consumerSeparator = "-------------------"
)

// PageViewObserver receives every decoded page view with its headers.
type PageViewObserver func(ctx context.Context, event pageview.PageView, headers metadatapkg.Metadata)

// ConsumerConfig configures RegisterPageViewConsumer. Zero values fall back
// to DefaultConsumerName and Config.Topic.
type ConsumerConfig struct {
	Name       string
	Topic      string
	Subscriber message.Subscriber
	OnPageView PageViewObserver
}

// RegisterPageViewConsumer subscribes a handler that logs every page view
// received on the topic. Messages that do not decode are logged and
// acknowledged.
func RegisterPageViewConsumer(svc *Service, cfg ConsumerConfig) (*HandlerInfo, error) {
	if svc == nil {
		return nil, errspkg.ErrServiceRequired
	}
	if cfg.Name == "" {
		cfg.Name = DefaultConsumerName
	}
	if cfg.Topic == "" {
		cfg.Topic = svc.Conf.Topic
	}

	c := &pageViewConsumer{
		topic:    cfg.Topic,
		logger:   svc.Logger.With(loggingpkg.LogFields{"handler": cfg.Name}),
		observer: cfg.OnPageView,
	}
	info, err := svc.registerHandler(handlerRegistration{
		Name:         cfg.Name,
		ConsumeQueue: cfg.Topic,
		Subscriber:   cfg.Subscriber,
		Handler:      c.handle,
	})
	if err != nil {
		return nil, err
	}
	c.stats = info.Stats
	return info, nil
}

type pageViewConsumer struct {
	topic    string
	logger   loggingpkg.ServiceLogger
	observer PageViewObserver
	stats    *HandlerStats
}

func (c *pageViewConsumer) handle(msg *message.Message) error {
	event, err := pageview.Decode(msg.Payload)
	if err != nil {
		c.logger.Error("Dropping undecodable message", errspkg.NewDeserializationError(msg.UUID, err), loggingpkg.LogFields{
			"payload": string(msg.Payload),
		})
		if c.stats != nil {
			c.stats.recordRejected()
		}
		return nil
	}

	ctx := msg.Context()
	headers := c.headers(ctx, msg)

	c.logger.Info(consumerSeparator, nil)
	c.logger.Info("new page view "+event.String(), nil)
	for _, key := range headers.Keys() {
		c.logger.Info(key+"="+headers[key], nil)
	}

	if c.observer != nil {
		c.observer(ctx, event, headers)
	}
	return nil
}

func (c *pageViewConsumer) headers(ctx context.Context, msg *message.Message) metadatapkg.Metadata {
	headers := metadatapkg.FromWatermill(msg.Metadata)
	for key, value := range kafkatransport.DeliveryHeaders(ctx) {
		headers[key] = value
	}
	topic := message.SubscribeTopicFromCtx(ctx)
	if topic == "" {
		topic = c.topic
	}
	headers[ReceivedTopicHeader] = topic
	return headers
}
