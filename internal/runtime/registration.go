package runtime

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/drblury/pageflow/internal/runtime/errors"
)

type handlerRegistration struct {
	Name         string
	ConsumeQueue string
	Subscriber   message.Subscriber
	Handler      message.NoPublishHandlerFunc
}

// HandlerInfo describes a handler registered on the service router.
type HandlerInfo struct {
	Name         string
	ConsumeQueue string
	Stats        *HandlerStats
}

// HandlerStats counts what a handler did. Safe for concurrent use.
type HandlerStats struct {
	mu sync.Mutex

	processed      uint64
	failed         uint64
	rejected       uint64
	processingTime time.Duration
	lastProcessed  time.Time
}

// HandlerStatsSnapshot is a point-in-time copy of HandlerStats.
type HandlerStatsSnapshot struct {
	MessagesProcessed   uint64        `json:"messages_processed"`
	MessagesFailed      uint64        `json:"messages_failed"`
	MessagesRejected    uint64        `json:"messages_rejected"`
	TotalProcessingTime time.Duration `json:"total_processing_time_ns"`
	LastProcessedAt     time.Time     `json:"last_processed_at"`
}

func (s *HandlerStats) record(d time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failed++
	} else {
		s.processed++
	}
	s.processingTime += d
	s.lastProcessed = time.Now()
}

func (s *HandlerStats) recordRejected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected++
}

// Snapshot returns the current counters. Rejected messages are also counted
// as processed since the handler acknowledges them.
func (s *HandlerStats) Snapshot() HandlerStatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return HandlerStatsSnapshot{
		MessagesProcessed:   s.processed,
		MessagesFailed:      s.failed,
		MessagesRejected:    s.rejected,
		TotalProcessingTime: s.processingTime,
		LastProcessedAt:     s.lastProcessed,
	}
}

func (s *Service) registerHandler(cfg handlerRegistration) (*HandlerInfo, error) {
	if cfg.Handler == nil {
		return nil, errspkg.ErrHandlerRequired
	}
	if cfg.Name == "" {
		return nil, errspkg.ErrHandlerNameRequired
	}
	if cfg.ConsumeQueue == "" {
		return nil, errspkg.ErrTopicRequired
	}
	if s.handlerInfo(cfg.Name) != nil {
		return nil, fmt.Errorf("%w: %s", errspkg.ErrDuplicateHandler, cfg.Name)
	}
	if cfg.Subscriber == nil {
		cfg.Subscriber = s.subscriber
	}

	info := &HandlerInfo{
		Name:         cfg.Name,
		ConsumeQueue: cfg.ConsumeQueue,
		Stats:        &HandlerStats{},
	}

	s.handlersMu.Lock()
	s.handlers = append(s.handlers, info)
	s.handlersMu.Unlock()

	s.router.AddConsumerHandler(cfg.Name, cfg.ConsumeQueue, cfg.Subscriber, cfg.Handler)
	return info, nil
}

// Handlers returns the handlers registered so far, in registration order.
func (s *Service) Handlers() []*HandlerInfo {
	s.handlersMu.RLock()
	defer s.handlersMu.RUnlock()
	return slices.Clone(s.handlers)
}

func (s *Service) handlerInfo(name string) *HandlerInfo {
	s.handlersMu.RLock()
	defer s.handlersMu.RUnlock()
	for _, info := range s.handlers {
		if info.Name == name {
			return info
		}
	}
	return nil
}

func (s *Service) statsHooks() HandlerHooks {
	record := func(ev HandlerEvent, err error) {
		if info := s.handlerInfo(ev.HandlerName); info != nil {
			info.Stats.record(ev.Duration, err)
		}
	}
	return HandlerHooks{
		OnDone:  func(ev HandlerEvent) { record(ev, nil) },
		OnError: record,
	}
}
