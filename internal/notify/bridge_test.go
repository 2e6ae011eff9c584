package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
)

type fakeReader struct {
	msgs   chan kafka.Message
	mu     sync.Mutex
	closed bool
}

func newFakeReader() *fakeReader {
	return &fakeReader{msgs: make(chan kafka.Message, 8)}
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m := <-r.msgs:
		return m, nil
	}
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) send(t *testing.T, value any, key string) {
	t.Helper()
	b, err := json.Marshal(value)
	require.NoError(t, err)
	r.msgs <- kafka.Message{Key: []byte(key), Value: b}
}

func runBridge(t *testing.T, hub *Hub, r Reader) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	b := &Bridge{Hub: hub, Reader: r}
	go func() { done <- b.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("bridge did not stop")
		}
	})
}

func receive(t *testing.T, s *Subscriber) Message {
	t.Helper()
	select {
	case m := <-s.C:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
		return Message{}
	}
}

func TestBridge_ForwardsOrderEventsToGroup(t *testing.T) {
	hub := NewHub()
	sub := NewSubscriber(4)
	hub.Join("42", sub)

	r := newFakeReader()
	runBridge(t, hub, r)

	order := &models.Order{ID: 3, UserID: 42, OrderNumber: "ORD-20260101-ABCDEF123456", Status: models.OrderStatusProcessing}
	r.send(t, mykafka.NewEvent(EventOrderUpdated, GroupFor(42), order), "42")

	msg := receive(t, sub)
	assert.Equal(t, EventOrderUpdated, msg.Type)
	assert.Equal(t, "42", msg.Group)

	raw, ok := msg.Payload.(json.RawMessage)
	require.True(t, ok)
	var got models.Order
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, order.OrderNumber, got.OrderNumber)
	assert.Equal(t, models.OrderStatusProcessing, got.Status)
}

func TestBridge_FallsBackToMessageKeyAndSkipsGarbage(t *testing.T) {
	hub := NewHub()
	sub := NewSubscriber(4)
	hub.Join("5", sub)

	r := newFakeReader()
	runBridge(t, hub, r)

	r.msgs <- kafka.Message{Key: []byte("5"), Value: []byte("not json")}
	r.send(t, map[string]any{"type": EventOrderCreated, "payload": map[string]any{"id": 1}}, "5")

	msg := receive(t, sub)
	assert.Equal(t, EventOrderCreated, msg.Type)
	assert.Equal(t, "5", msg.Group)
}

type failingReader struct{ calls int }

func (r *failingReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.calls++
	if r.calls == 1 {
		return kafka.Message{}, errors.New("broker down")
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *failingReader) Close() error { return nil }

func TestBridge_StopsOnCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{Hub: NewHub(), Reader: &failingReader{}}

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("bridge kept running after cancel")
	}
}

func TestBridge_Close(t *testing.T) {
	r := newFakeReader()
	require.NoError(t, (&Bridge{Hub: NewHub(), Reader: r}).Close())
	assert.True(t, r.closed)
}
