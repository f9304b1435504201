package dispatch

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/drblury/pageflow/internal/runtime/errors"
	metadatapkg "github.com/drblury/pageflow/internal/runtime/metadata"
	"github.com/drblury/pageflow/internal/runtime/pageview"
)

// DefaultChannelName names the channel created by NewIntegrationFlow.
const DefaultChannelName = "pageViews"

// MetadataKeyChannel records the channel a routed message went through.
const MetadataKeyChannel = "pageflow_channel"

// RoutedChannel submits events to a DirectChannel. Whatever is subscribed to
// the channel decides where the message ends up; destination only labels
// errors and spans.
type RoutedChannel struct {
	channel     *DirectChannel
	destination string
	headers     metadatapkg.Metadata
}

// NewRoutedChannel returns a publisher feeding ch. headers are added to every
// envelope.
func NewRoutedChannel(ch *DirectChannel, destination string, headers metadatapkg.Metadata) (*RoutedChannel, error) {
	if ch == nil {
		return nil, errspkg.ErrPublisherRequired
	}
	return &RoutedChannel{
		channel:     ch,
		destination: destination,
		headers:     headers.With(MetadataKeyChannel, ch.Name()),
	}, nil
}

// NewIntegrationFlow wires a DirectChannel to an OutboundAdapter publishing
// to topic and returns the publisher feeding the channel.
func NewIntegrationFlow(publisher message.Publisher, topic string, middlewares ...message.HandlerMiddleware) (*RoutedChannel, error) {
	adapter, err := NewOutboundAdapter(publisher, topic)
	if err != nil {
		return nil, err
	}
	ch := NewDirectChannel(DefaultChannelName, middlewares...)
	if err := adapter.Bind(ch); err != nil {
		return nil, err
	}
	return NewRoutedChannel(ch, topic, nil)
}

func (r *RoutedChannel) Source() string { return SourceIntegration }

// Channel returns the channel events are submitted to.
func (r *RoutedChannel) Channel() *DirectChannel { return r.channel }

// Publish submits event to the channel and returns once the subscriber has
// handled it. The subscriber picks the topic, so topic is not consulted.
func (r *RoutedChannel) Publish(ctx context.Context, _ string, event pageview.PageView) (err error) {
	ctx, span := startPublishSpan(ctx, SourceIntegration, r.destination)
	defer func() { endPublishSpan(span, err) }()

	msg, err := NewMessage(ctx, event, r.headers)
	if err != nil {
		return errspkg.NewPublishError(r.destination, SourceIntegration, err)
	}
	return errspkg.NewPublishError(r.destination, SourceIntegration, r.channel.Send(msg))
}
