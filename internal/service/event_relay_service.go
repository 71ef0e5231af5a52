package service

import (
	"context"
	"time"

	"ai-llm-demos-be/internal/pkg/logger"
	"ai-llm-demos-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Subscription yields the bus messages a relay consumes.
type Subscription interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// IEventRelayService drains the in-process bus into an external sink.
type IEventRelayService interface {
	Start(ctx context.Context) error
}

type RelayOptions struct {
	// MaxAttempts bounds deliveries per event; the event is dropped after the last failure.
	MaxAttempts int
	// Backoff is the wait before the first redelivery and doubles on each later one.
	Backoff time.Duration
	Sleep   SleepFunc // nil means a real timer
}

type eventRelayService struct {
	source Subscription
	sink   events.IPublisher // nil logs only
	logger logger.ILogger
	opts   RelayOptions

	// attempts is keyed by message UUID; redeliveries are copies with the same UUID.
	// Only the relay goroutine touches it.
	attempts map[string]int
}

func NewEventRelayService(source Subscription, sink events.IPublisher, log logger.ILogger, opts RelayOptions) IEventRelayService {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepCtx
	}
	return &eventRelayService{
		source:   source,
		sink:     sink,
		logger:   log,
		opts:     opts,
		attempts: make(map[string]int),
	}
}

// Start subscribes and returns; messages are handled on a background goroutine until ctx ends.
func (s *eventRelayService) Start(ctx context.Context) error {
	messages, err := s.source.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *eventRelayService) processMessage(ctx context.Context, msg *message.Message) {
	event, err := events.Unmarshal(msg.Payload)
	if err != nil {
		s.logger.Error("EVENTS", "Failed to unmarshal event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // never retry garbage
		return
	}

	if s.sink == nil {
		s.logger.Info("EVENTS", event.EventType(), event.Payload())
		msg.Ack()
		return
	}

	err = s.sink.Publish(ctx, event)
	if err == nil {
		delete(s.attempts, msg.UUID)
		msg.Ack()
		return
	}

	s.attempts[msg.UUID]++
	attempt := s.attempts[msg.UUID]
	if attempt >= s.opts.MaxAttempts {
		delete(s.attempts, msg.UUID)
		s.logger.Error("EVENTS", "Dropping event after repeated relay failures", map[string]interface{}{
			"type":     event.EventType(),
			"attempts": attempt,
			"error":    err.Error(),
		})
		msg.Ack()
		return
	}

	delay := s.opts.Backoff << (attempt - 1)
	s.logger.Warn("EVENTS", "Failed to relay event, will retry", map[string]interface{}{
		"type":     event.EventType(),
		"attempt":  attempt,
		"retry_in": delay.String(),
		"error":    err.Error(),
	})
	if err := s.opts.Sleep(ctx, delay); err != nil {
		delete(s.attempts, msg.UUID)
		msg.Ack() // shutting down
		return
	}
	msg.Nack()
}
