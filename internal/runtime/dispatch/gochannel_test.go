package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	errspkg "github.com/drblury/pageflow/internal/runtime/errors"
	"github.com/drblury/pageflow/internal/runtime/pageview"
)

func newPubSub(t *testing.T) (*gochannel.GoChannel, <-chan *message.Message) {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	messages, err := pubSub.Subscribe(ctx, "pv_topic")
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	return pubSub, messages
}

func receive(t *testing.T, messages <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg, ok := <-messages:
		if !ok {
			t.Fatal("subscription closed")
		}
		msg.Ack()
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestEveryVariantDeliversOneMessage(t *testing.T) {
	pubSub, messages := newPubSub(t)

	direct, _ := NewDirectClient(pubSub)
	binding, _ := NewOutputBinding(pubSub, DefaultOutput, map[string]string{DefaultOutput: "pv_topic"})
	routed, _ := NewIntegrationFlow(pubSub, "pv_topic")

	for _, publisher := range []Publisher{direct, binding, routed} {
		event := pageview.NewFactory().Generate(publisher.Source())
		if err := publisher.Publish(context.Background(), "pv_topic", event); err != nil {
			t.Fatalf("%s publish failed: %v", publisher.Source(), err)
		}

		got, err := pageview.Decode(receive(t, messages).Payload)
		if err != nil {
			t.Fatalf("%s payload did not decode: %v", publisher.Source(), err)
		}
		if got != event {
			t.Fatalf("%s: expected %+v, got %+v", publisher.Source(), event, got)
		}
	}

	select {
	case extra := <-messages:
		t.Fatalf("unexpected extra message %s", extra.UUID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBindingPayloadMatchesDirectClient(t *testing.T) {
	pubSub, messages := newPubSub(t)

	direct, _ := NewDirectClient(pubSub)
	binding, _ := NewOutputBinding(pubSub, DefaultOutput, map[string]string{DefaultOutput: "pv_topic"})
	event := samplePageView("kafka")

	if err := direct.Publish(context.Background(), "pv_topic", event); err != nil {
		t.Fatalf("direct publish failed: %v", err)
	}
	if err := binding.Send(context.Background(), DefaultOutput, event); err != nil {
		t.Fatalf("binding send failed: %v", err)
	}

	first := receive(t, messages)
	second := receive(t, messages)
	if string(first.Payload) != string(second.Payload) {
		t.Fatalf("payloads differ:\n%s\n%s", first.Payload, second.Payload)
	}
}

func TestPublishFailsWhenBrokerIsDown(t *testing.T) {
	pubSub, messages := newPubSub(t)
	direct, _ := NewDirectClient(pubSub)
	if err := pubSub.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	err := direct.Publish(context.Background(), "pv_topic", samplePageView(SourceKafka))

	var pubErr *errspkg.PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("expected PublishError, got %v", err)
	}
	select {
	case msg, ok := <-messages:
		if ok {
			t.Fatalf("no message expected, got %s", msg.UUID)
		}
	case <-time.After(50 * time.Millisecond):
	}
}
