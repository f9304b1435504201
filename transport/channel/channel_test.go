package channel

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/pageflow/transport"
)

func TestRegister(t *testing.T) {
	original := transport.DefaultRegistry
	t.Cleanup(func() { transport.DefaultRegistry = original })
	transport.DefaultRegistry = transport.NewRegistry()
	Register()

	caps := transport.GetCapabilities(TransportName)
	assert.Equal(t, "channel", caps.Name)
	assert.True(t, caps.SupportsOrdering)
	assert.False(t, caps.SupportsProvisioning)
	assert.Equal(t, transport.ChannelCapabilities, Capabilities())
}

func TestBuild_DeliversToLateSubscriber(t *testing.T) {
	tr, err := Build(context.Background(), &mockConfig{}, watermill.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Publisher.Close() })

	require.NoError(t, tr.Publisher.Publish("pv_topic", message.NewMessage("1", []byte(`{"page":"index.html"}`))))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	messages, err := tr.Subscriber.Subscribe(ctx, "pv_topic")
	require.NoError(t, err)

	select {
	case msg := <-messages:
		assert.Equal(t, "1", msg.UUID)
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("message published before subscribing was not delivered")
	}
}

func TestBuild_UsesCustomFactory(t *testing.T) {
	originalFactory := Factory
	t.Cleanup(func() { Factory = originalFactory })

	mockPub := &mockPublisher{}
	mockSub := &mockSubscriber{}
	Factory = func(cfg gochannel.Config, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber) {
		assert.True(t, cfg.Persistent)
		return mockPub, mockSub
	}

	tr, err := Build(context.Background(), &mockConfig{}, watermill.NopLogger{})

	require.NoError(t, err)
	assert.Same(t, mockPub, tr.Publisher)
	assert.Same(t, mockSub, tr.Subscriber)
	assert.Nil(t, tr.Provisioner)
}

func TestBuild_PublishAfterCloseFails(t *testing.T) {
	tr, err := Build(context.Background(), &mockConfig{}, watermill.NopLogger{})
	require.NoError(t, err)
	require.NoError(t, tr.Publisher.Close())

	assert.Error(t, tr.Publisher.Publish("pv_topic", message.NewMessage("1", nil)))
}

type mockConfig struct{}

func (m *mockConfig) GetPubSubSystem() string       { return TransportName }
func (m *mockConfig) GetServiceName() string        { return "pageflow" }
func (m *mockConfig) GetKafkaBrokers() []string     { return nil }
func (m *mockConfig) GetKafkaClientID() string      { return "" }
func (m *mockConfig) GetKafkaConsumerGroup() string { return "" }
func (m *mockConfig) GetRabbitMQURL() string        { return "" }
func (m *mockConfig) GetNATSURL() string            { return "" }

type mockPublisher struct{}

func (m *mockPublisher) Publish(topic string, messages ...*message.Message) error { return nil }
func (m *mockPublisher) Close() error                                             { return nil }

type mockSubscriber struct{}

func (m *mockSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return make(chan *message.Message), nil
}
func (m *mockSubscriber) Close() error { return nil }
