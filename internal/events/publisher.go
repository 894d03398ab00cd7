// Package events publishes order lifecycle events to the configured sink.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/flicky/go-shop-services/internal/model"
)

type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
	Close() error
}

func NewEvent(eventType string, data map[string]any) model.Event {
	return model.Event{Type: eventType, Timestamp: time.Now().UTC(), Data: data}
}

// Async emits events without blocking the caller. Each event gets one
// publish attempt bounded by timeout; failures are logged and dropped.
type Async struct {
	pub     Publisher
	timeout time.Duration
	log     *slog.Logger
	wg      sync.WaitGroup
}

func NewAsync(pub Publisher, timeout time.Duration, log *slog.Logger) *Async {
	return &Async{pub: pub, timeout: timeout, log: log}
}

func (a *Async) Emit(eventType string, data map[string]any) {
	event := NewEvent(eventType, data)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.log.Warn("event dropped after close", "event_type", event.Type)
		return
	}
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				a.log.Error("event publisher panicked", "event_type", event.Type, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		if err := a.pub.Publish(ctx, event); err != nil {
			a.log.Warn("publish event failed (non-critical)", "event_type", event.Type, "error", err)
			return
		}
		a.log.Debug("event published", "event_type", event.Type)
	}()
}

// Close waits for in-flight publishes before closing the publisher.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	a.wg.Wait()
	return a.pub.Close()
}

// LogPublisher writes events to the log instead of a broker.
type LogPublisher struct{ log *slog.Logger }

func NewLogPublisher(log *slog.Logger) *LogPublisher { return &LogPublisher{log: log} }

func (p *LogPublisher) Publish(_ context.Context, event model.Event) error {
	p.log.Info("order event", "event_type", event.Type, "timestamp", event.Timestamp, "data", event.Data)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.Event) error { return nil }
func (NopPublisher) Close() error                               { return nil }
