package runtime

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/drblury/pageflow/internal/runtime/errors"
	loggingpkg "github.com/drblury/pageflow/internal/runtime/logging"
	metadatapkg "github.com/drblury/pageflow/internal/runtime/metadata"
)

// HandlerEvent describes one message passing through a router handler.
type HandlerEvent struct {
	HandlerName string
	Topic       string
	MessageUUID string
	Metadata    metadatapkg.Metadata
	Context     context.Context
	StartedAt   time.Time
	// Duration is only set for OnDone and OnError.
	Duration time.Duration
}

// HandlerHooks defines callbacks around handler execution. Nil hooks are skipped.
type HandlerHooks struct {
	OnStart func(HandlerEvent)
	OnDone  func(HandlerEvent)
	OnError func(HandlerEvent, error)
}

// Merge combines two HandlerHooks. The hooks from other run after the hooks from h.
func (h HandlerHooks) Merge(other HandlerHooks) HandlerHooks {
	return HandlerHooks{
		OnStart: chainEventHooks(h.OnStart, other.OnStart),
		OnDone:  chainEventHooks(h.OnDone, other.OnDone),
		OnError: chainErrorHooks(h.OnError, other.OnError),
	}
}

func chainEventHooks(a, b func(HandlerEvent)) func(HandlerEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ev HandlerEvent) {
		a(ev)
		b(ev)
	}
}

func chainErrorHooks(a, b func(HandlerEvent, error)) func(HandlerEvent, error) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ev HandlerEvent, err error) {
		a(ev, err)
		b(ev, err)
	}
}

// HandlerHooksMiddleware invokes hooks around every router handler.
func HandlerHooksMiddleware(hooks HandlerHooks) MiddlewareRegistration {
	return MiddlewareRegistration{
		Name:       "handler_hooks",
		Middleware: handlerHooksMiddleware(hooks),
	}
}

func handlerHooksMiddleware(hooks HandlerHooks) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			ctx := msg.Context()
			ev := HandlerEvent{
				HandlerName: message.HandlerNameFromCtx(ctx),
				Topic:       message.SubscribeTopicFromCtx(ctx),
				MessageUUID: msg.UUID,
				Metadata:    metadatapkg.FromWatermill(msg.Metadata),
				Context:     ctx,
				StartedAt:   time.Now(),
			}

			if hooks.OnStart != nil {
				hooks.OnStart(ev)
			}

			msgs, err := h(msg)
			ev.Duration = time.Since(ev.StartedAt)

			if err != nil {
				if hooks.OnError != nil {
					hooks.OnError(ev, err)
				}
			} else if hooks.OnDone != nil {
				hooks.OnDone(ev)
			}
			return msgs, err
		}
	}
}

// LoggingHooks returns hooks that log handler completion and failures.
func LoggingHooks(logger loggingpkg.ServiceLogger) HandlerHooks {
	return HandlerHooks{
		OnDone: func(ev HandlerEvent) {
			logger.Debug("Handler completed", loggingpkg.LogFields{
				"handler":      ev.HandlerName,
				"topic":        ev.Topic,
				"message_uuid": ev.MessageUUID,
				"duration_ms":  ev.Duration.Milliseconds(),
			})
		},
		OnError: func(ev HandlerEvent, err error) {
			logger.Error("Handler failed", err, loggingpkg.LogFields{
				"handler":      ev.HandlerName,
				"topic":        ev.Topic,
				"message_uuid": ev.MessageUUID,
				"duration_ms":  ev.Duration.Milliseconds(),
			})
		},
	}
}

// ReadyHook runs once the router is consuming.
type ReadyHook func(ctx context.Context) error

type readyHook struct {
	name string
	fn   ReadyHook
}

// OnReady registers hook to run once Start has the router running. Hooks run
// sequentially in registration order on the goroutine that called Start.
func (s *Service) OnReady(name string, hook ReadyHook) error {
	if name == "" {
		return errspkg.ErrHandlerNameRequired
	}
	if hook == nil {
		return errspkg.ErrHandlerRequired
	}
	s.readyMu.Lock()
	defer s.readyMu.Unlock()
	s.readyHooks = append(s.readyHooks, readyHook{name: name, fn: hook})
	return nil
}

func (s *Service) runReadyHooks(ctx context.Context) {
	s.readyOnce.Do(func() {
		s.readyMu.Lock()
		hooks := append([]readyHook(nil), s.readyHooks...)
		s.readyMu.Unlock()

		for _, hook := range hooks {
			s.Logger.Info("Running ready hook", loggingpkg.LogFields{"hook": hook.name})
			if err := hook.fn(ctx); err != nil {
				s.Logger.Error("Ready hook failed", err, loggingpkg.LogFields{"hook": hook.name})
			}
		}
	})
}
