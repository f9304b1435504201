// Package dispatch holds the ways a page view reaches the broker: a direct
// client handle, a named output binding, and a routed in-process channel
// feeding an outbound adapter.
package dispatch

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/drblury/pageflow/internal/runtime/errors"
	idspkg "github.com/drblury/pageflow/internal/runtime/ids"
	metadatapkg "github.com/drblury/pageflow/internal/runtime/metadata"
	"github.com/drblury/pageflow/internal/runtime/pageview"
)

// Source tags identifying the publisher variant that produced an event.
const (
	SourceKafka       = "kafka"
	SourceStream      = "stream"
	SourceIntegration = "integration"
)

// MetadataKeyEventSchema names the payload type carried by a message.
const MetadataKeyEventSchema = "event_message_schema"

// Publisher sends one page view to the broker.
type Publisher interface {
	Source() string
	Publish(ctx context.Context, topic string, event pageview.PageView) error
}

// NewMessage builds the broker envelope for event: a fresh ULID, the JSON
// payload, the schema header plus md, the trace context of ctx, and ctx
// attached.
func NewMessage(ctx context.Context, event pageview.PageView, md metadatapkg.Metadata) (*message.Message, error) {
	payload, err := pageview.Encode(event)
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(idspkg.NewMessageID(), payload)
	msg.Metadata = metadatapkg.ToWatermill(md)
	msg.Metadata[MetadataKeyEventSchema] = pageview.SchemaName
	if ctx != nil {
		injectTraceContext(ctx, msg.Metadata)
		msg.SetContext(ctx)
	}
	return msg, nil
}

// publishTo is the common path of the broker-facing variants.
func publishTo(ctx context.Context, publisher message.Publisher, source, topic string, event pageview.PageView, md metadatapkg.Metadata) (err error) {
	if topic == "" {
		return errspkg.NewPublishError(topic, source, errspkg.ErrTopicRequired)
	}

	ctx, span := startPublishSpan(ctx, source, topic)
	defer func() { endPublishSpan(span, err) }()

	msg, err := NewMessage(ctx, event, md)
	if err != nil {
		return errspkg.NewPublishError(topic, source, err)
	}
	return errspkg.NewPublishError(topic, source, publisher.Publish(topic, msg))
}
