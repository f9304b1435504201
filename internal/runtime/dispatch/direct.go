package dispatch

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/drblury/pageflow/internal/runtime/errors"
	"github.com/drblury/pageflow/internal/runtime/pageview"
)

// DirectClient publishes straight through a long-lived broker publisher.
type DirectClient struct {
	publisher message.Publisher
}

// NewDirectClient wraps the broker publisher.
func NewDirectClient(publisher message.Publisher) (*DirectClient, error) {
	if publisher == nil {
		return nil, errspkg.ErrPublisherRequired
	}
	return &DirectClient{publisher: publisher}, nil
}

func (c *DirectClient) Source() string { return SourceKafka }

// Publish sends event to topic.
func (c *DirectClient) Publish(ctx context.Context, topic string, event pageview.PageView) error {
	return publishTo(ctx, c.publisher, SourceKafka, topic, event, nil)
}
