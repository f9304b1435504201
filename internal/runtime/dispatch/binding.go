package dispatch

import (
	"context"
	"fmt"
	"maps"

	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/drblury/pageflow/internal/runtime/errors"
	"github.com/drblury/pageflow/internal/runtime/pageview"
)

// DefaultOutput is the output name the stream publisher sends to.
const DefaultOutput = "pageViews-out-0"

// OutputBinding sends events to named outputs that the bindings resolve to
// broker topics.
type OutputBinding struct {
	publisher message.Publisher
	output    string
	bindings  map[string]string
}

// NewOutputBinding returns a binding publisher. An empty output selects
// DefaultOutput; it does not need to be bound until the first send.
func NewOutputBinding(publisher message.Publisher, output string, bindings map[string]string) (*OutputBinding, error) {
	if publisher == nil {
		return nil, errspkg.ErrPublisherRequired
	}
	if output == "" {
		output = DefaultOutput
	}
	return &OutputBinding{
		publisher: publisher,
		output:    output,
		bindings:  maps.Clone(bindings),
	}, nil
}

func (b *OutputBinding) Source() string { return SourceStream }

// Output returns the output name Publish sends to.
func (b *OutputBinding) Output() string { return b.output }

// Resolve returns the topic bound to output.
func (b *OutputBinding) Resolve(output string) (string, error) {
	topic, ok := b.bindings[output]
	if !ok || topic == "" {
		return "", fmt.Errorf("%w: %q", errspkg.ErrBindingNotFound, output)
	}
	return topic, nil
}

// Send publishes event to the topic bound to output.
func (b *OutputBinding) Send(ctx context.Context, output string, event pageview.PageView) error {
	topic, err := b.Resolve(output)
	if err != nil {
		return errspkg.NewPublishError(output, SourceStream, err)
	}
	return publishTo(ctx, b.publisher, SourceStream, topic, event, nil)
}

// Publish sends event to the configured output. The destination comes from
// the binding, so topic is not consulted.
func (b *OutputBinding) Publish(ctx context.Context, _ string, event pageview.PageView) error {
	return b.Send(ctx, b.output, event)
}
