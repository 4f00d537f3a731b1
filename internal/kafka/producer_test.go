package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"go-storefront/internal/events"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *memWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.msgs)
}

func TestProducerWritesKeyedEnvelope(t *testing.T) {
	w := &memWriter{}
	p := NewProducerWithWriter(w, 8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	env, err := events.New(events.OrderPlaced, "storefront", "order-42", events.OrderPayload{OrderID: "order-42"})
	require.NoError(t, err)
	p.Publish(ctx, env)

	require.Eventually(t, func() bool { return w.count() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	p.WaitClosed()

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.True(t, w.closed)
	assert.Equal(t, "order-42", string(w.msgs[0].Key))
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)

	var decoded events.Envelope
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, env.EventID, decoded.EventID)
}

func TestProducerDropsAfterStop(t *testing.T) {
	w := &memWriter{}
	p := NewProducerWithWriter(w, 1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()
	p.WaitClosed()

	env, err := events.New(events.OrderCancelled, "storefront", "x", events.OrderPayload{})
	require.NoError(t, err)

	assert.NotPanics(t, func() { p.Publish(context.Background(), env) })
	assert.Equal(t, 0, w.count())
}
