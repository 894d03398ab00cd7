// Package worker consumes order events from RabbitMQ.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/go-shop-services/internal/model"
)

// HandlerFunc processes one event. A returned error sends the message to
// the dead-letter queue.
type HandlerFunc func(ctx context.Context, event model.Event) error

type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// IdempotencyStore remembers message ids that were already handled.
type IdempotencyStore interface {
	Seen(ctx context.Context, id string) (bool, error)
	Mark(ctx context.Context, id string) error
}

type EventWorker struct {
	channel  consumer
	queue    string
	consumer string
	handle   HandlerFunc
	store    IdempotencyStore
	log      *slog.Logger
	done     chan struct{}
	stopped  chan struct{}
}

// NewEventWorker consumes queue. store may be nil, in which case
// redelivered messages are handled again.
func NewEventWorker(ch consumer, queue, consumerTag string, handle HandlerFunc, store IdempotencyStore, log *slog.Logger) *EventWorker {
	return &EventWorker{
		channel:  ch,
		queue:    queue,
		consumer: consumerTag,
		handle:   handle,
		store:    store,
		log:      log,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (w *EventWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(w.queue, w.consumer, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		defer close(w.stopped)
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("event worker started", "queue", w.queue)
	return nil
}

// Stop ends the consume loop and waits for the message in hand.
func (w *EventWorker) Stop() {
	close(w.done)
	<-w.stopped
}

func (w *EventWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var event model.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		w.log.Error("unmarshal event", "message_id", msg.MessageId, "error", err)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("event_type", event.Type, "message_id", msg.MessageId)

	if w.store != nil && msg.MessageId != "" {
		seen, err := w.store.Seen(ctx, msg.MessageId)
		if err != nil {
			log.Error("check idempotency key", "error", err)
			_ = msg.Nack(false, true)
			return
		}
		if seen {
			log.Info("event already processed, skipping")
			_ = msg.Ack(false)
			return
		}
	}

	if err := w.handle(ctx, event); err != nil {
		log.Error("handle event failed", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	if w.store != nil && msg.MessageId != "" {
		if err := w.store.Mark(ctx, msg.MessageId); err != nil {
			log.Error("set idempotency key", "error", err)
		}
	}

	_ = msg.Ack(false)
	log.Debug("event processed")
}

type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

func (s *RedisIdempotencyStore) Seen(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, idempotencyKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisIdempotencyStore) Mark(ctx context.Context, id string) error {
	return s.client.Set(ctx, idempotencyKey(id), "1", s.ttl).Err()
}

func idempotencyKey(id string) string { return "event_processed:" + id }

// LogEvent is a HandlerFunc that records each event in the log.
func LogEvent(log *slog.Logger) HandlerFunc {
	return func(_ context.Context, event model.Event) error {
		log.Info("order event received", "event_type", event.Type, "timestamp", event.Timestamp, "data", event.Data)
		return nil
	}
}
