package dispatch

import (
	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/drblury/pageflow/internal/runtime/errors"
)

// OutboundAdapter forwards every message it receives to a broker topic.
type OutboundAdapter struct {
	publisher message.Publisher
	topic     string
}

// NewOutboundAdapter returns an adapter fixed to topic.
func NewOutboundAdapter(publisher message.Publisher, topic string) (*OutboundAdapter, error) {
	if publisher == nil {
		return nil, errspkg.ErrPublisherRequired
	}
	if topic == "" {
		return nil, errspkg.ErrTopicRequired
	}
	return &OutboundAdapter{publisher: publisher, topic: topic}, nil
}

func (a *OutboundAdapter) Topic() string { return a.topic }

// Handle publishes msg to the adapter's topic.
func (a *OutboundAdapter) Handle(msg *message.Message) error {
	return a.publisher.Publish(a.topic, msg)
}

// Bind subscribes the adapter to ch.
func (a *OutboundAdapter) Bind(ch *DirectChannel) error {
	return ch.Subscribe(a.Handle)
}
