package dispatch

import (
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/drblury/pageflow/internal/runtime/errors"
)

// DirectChannel is a synchronous point-to-point channel with at most one
// subscriber. Send runs the subscriber on the caller's goroutine and returns
// its error.
type DirectChannel struct {
	name        string
	middlewares []message.HandlerMiddleware

	mu      sync.RWMutex
	handler message.HandlerFunc
}

// NewDirectChannel creates a channel. Middlewares wrap the subscriber in the
// order given, the first one outermost.
func NewDirectChannel(name string, middlewares ...message.HandlerMiddleware) *DirectChannel {
	return &DirectChannel{name: name, middlewares: middlewares}
}

func (c *DirectChannel) Name() string { return c.name }

// Subscribe attaches the single consumer of the channel.
func (c *DirectChannel) Subscribe(handler message.NoPublishHandlerFunc) error {
	if handler == nil {
		return errspkg.ErrHandlerRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handler != nil {
		return errspkg.ErrAlreadySubscribed
	}

	h := func(msg *message.Message) ([]*message.Message, error) {
		return nil, handler(msg)
	}
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		h = c.middlewares[i](h)
	}
	c.handler = h
	return nil
}

// Unsubscribe detaches the consumer, if any.
func (c *DirectChannel) Unsubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = nil
}

// Send hands msg to the subscriber and waits for it to finish.
func (c *DirectChannel) Send(msg *message.Message) error {
	c.mu.RLock()
	h := c.handler
	c.mu.RUnlock()

	if h == nil {
		return errspkg.ErrNoSubscriber
	}
	_, err := h(msg)
	return err
}
