package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/go-shop-services/internal/model"
)

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_WritesEnvelope(t *testing.T) {
	w := &fakeWriter{}
	pub := &KafkaPublisher{writer: w, topic: "order-events"}

	event := NewEvent(model.EventOrderCreated, map[string]any{"order_id": int64(12), "user_id": "u1"})
	require.NoError(t, pub.Publish(context.Background(), event))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, []byte("12"), msg.Key)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "order_created", got["event_type"])
	assert.Contains(t, got, "timestamp")
	assert.Equal(t, "u1", got["data"].(map[string]any)["user_id"])
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	pub := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}, topic: "order-events"}
	err := pub.Publish(context.Background(), NewEvent(model.EventOrderPaid, nil))
	assert.ErrorContains(t, err, "broker down")
}

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return nil
}

func (c *fakeChannel) Close() error { return nil }

func TestRabbitMQPublisher_RoutesByEventType(t *testing.T) {
	ch := &fakeChannel{}
	pub := &RabbitMQPublisher{channel: ch, exchange: "order-events"}

	require.NoError(t, pub.Publish(context.Background(), NewEvent(model.EventOrderStatusUpdated, map[string]any{"order_id": 3})))
	assert.Equal(t, "order-events", ch.exchange)
	assert.Equal(t, "order_status_updated", ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.NotEmpty(t, ch.msg.MessageId)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
	err    error
	block  chan struct{}
}

func (p *recordingPublisher) Publish(ctx context.Context, event model.Event) error {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func TestAsync_EmitDoesNotBlock(t *testing.T) {
	pub := &recordingPublisher{block: make(chan struct{})}
	async := NewAsync(pub, time.Second, discardLog)

	start := time.Now()
	async.Emit(model.EventOrderCreated, map[string]any{"order_id": 1})
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(pub.block)
	require.NoError(t, async.Close())
	require.Len(t, pub.events, 1)
	assert.Equal(t, model.EventOrderCreated, pub.events[0].Type)
}

func TestAsync_SwallowsFailuresAndTimeouts(t *testing.T) {
	failing := NewAsync(&recordingPublisher{err: errors.New("nope")}, time.Second, discardLog)
	failing.Emit(model.EventOrderPaid, nil)
	assert.NoError(t, failing.Close())

	stuck := NewAsync(&recordingPublisher{block: make(chan struct{})}, 20*time.Millisecond, discardLog)
	stuck.Emit(model.EventOrderPaid, nil)
	assert.NoError(t, stuck.Close())
}

func TestAsync_DropsEmitsAfterClose(t *testing.T) {
	pub := &recordingPublisher{}
	async := NewAsync(pub, time.Second, discardLog)
	require.NoError(t, async.Close())

	async.Emit(model.EventOrderCreated, map[string]any{"order_id": 1})
	assert.NoError(t, async.Close())
	assert.Empty(t, pub.events)
}

func TestAsync_EmitRacingClose(t *testing.T) {
	pub := &recordingPublisher{}
	async := NewAsync(pub, time.Second, discardLog)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			async.Emit(model.EventOrderStatusUpdated, map[string]any{"order_id": 1})
		}()
	}
	require.NoError(t, async.Close())
	wg.Wait()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.LessOrEqual(t, len(pub.events), 50)
}

func TestNewKafkaPublisher_ShortBatchTimeout(t *testing.T) {
	pub := NewKafkaPublisher([]string{"localhost:9092"}, "order-events")
	w, ok := pub.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, 10*time.Millisecond, w.BatchTimeout)
	assert.Equal(t, "order-events", w.Topic)
}
