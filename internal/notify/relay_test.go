package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
)

func TestRelay_DeliversToOwnerGroup(t *testing.T) {
	hub := NewHub()
	owner, other := NewSubscriber(4), NewSubscriber(4)
	hub.Join(GroupFor(42), owner)
	hub.Join(GroupFor(43), other)

	r := NewRelay(hub, nil, nil)
	order := &models.Order{ID: 9, UserID: 42, Status: models.OrderStatusShipped}
	r.NotifyOrder(context.Background(), EventOrderUpdated, order)

	require.Len(t, owner.C, 1)
	msg := <-owner.C
	assert.Equal(t, EventOrderUpdated, msg.Type)
	assert.Equal(t, "42", msg.Group)
	assert.Equal(t, order, msg.Payload)
	assert.Empty(t, other.C)
}

func TestRelay_CountsNotifications(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := NewRelay(NewHub(), nil, m)

	r.NotifyOrder(context.Background(), EventOrderCreated, &models.Order{ID: 1, UserID: 1})
	r.NotifyOrder(context.Background(), EventOrderUpdated, &models.Order{ID: 1, UserID: 1})
	r.NotifyOrder(context.Background(), EventOrderUpdated, &models.Order{ID: 1, UserID: 1})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Notifications.WithLabelValues(EventOrderUpdated)))
}

func TestRelay_NilIsSafe(t *testing.T) {
	var r *Relay
	assert.NotPanics(t, func() {
		r.NotifyOrder(context.Background(), EventOrderCreated, &models.Order{})
	})
	assert.NotPanics(t, func() {
		NewRelay(NewHub(), nil, nil).NotifyOrder(context.Background(), EventOrderCreated, nil)
	})
}

type stubPublisher struct {
	release chan struct{}
	err     error

	mu     sync.Mutex
	topics []string
	events []mykafka.Event
}

func (p *stubPublisher) Enabled() bool { return true }

func (p *stubPublisher) PublishEvent(ctx context.Context, topic string, e mykafka.Event) error {
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, e)
	return p.err
}

func (p *stubPublisher) Events() []mykafka.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]mykafka.Event(nil), p.events...)
}

func TestRelay_KafkaWriteDoesNotBlockCaller(t *testing.T) {
	hub := NewHub()
	local := NewSubscriber(4)
	hub.Join(GroupFor(42), local)

	pub := &stubPublisher{release: make(chan struct{})}
	m := metrics.New(prometheus.NewRegistry())
	r := NewRelay(hub, pub, m)

	ctx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	r.NotifyOrder(ctx, EventOrderUpdated, &models.Order{ID: 9, UserID: 42})
	cancel()
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	assert.Empty(t, pub.Events())
	assert.Zero(t, testutil.ToFloat64(m.Notifications.WithLabelValues(EventOrderUpdated)))

	close(pub.release)
	r.Wait()

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventOrderUpdated, events[0].Type)
	assert.Equal(t, "42", events[0].Key)
	assert.Equal(t, []string{mykafka.TopicOrders}, pub.topics)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(EventOrderUpdated)))

	assert.Empty(t, local.C, "with kafka the bridge feeds the hub, not the relay")
}

func TestRelay_FailedKafkaWriteIsNotCounted(t *testing.T) {
	pub := &stubPublisher{err: errors.New("broker down")}
	m := metrics.New(prometheus.NewRegistry())
	r := NewRelay(NewHub(), pub, m)

	r.NotifyOrder(context.Background(), EventOrderCreated, &models.Order{ID: 1, UserID: 1})
	r.Wait()

	assert.Len(t, pub.Events(), 1)
	assert.Zero(t, testutil.ToFloat64(m.Notifications.WithLabelValues(EventOrderCreated)))
}

func TestRelay_DisabledPublisherUsesHub(t *testing.T) {
	hub := NewHub()
	sub := NewSubscriber(4)
	hub.Join(GroupFor(3), sub)

	var prod *mykafka.Producer
	NewRelay(hub, prod, nil).NotifyOrder(context.Background(), EventOrderCreated, &models.Order{ID: 2, UserID: 3})

	require.Len(t, sub.C, 1)
	assert.Equal(t, EventOrderCreated, (<-sub.C).Type)
}
