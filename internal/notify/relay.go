package notify

import (
	"context"
	"strconv"
	"sync"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
)

// GroupFor is the group name a user's connections join.
func GroupFor(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// Publisher is the part of *mykafka.Producer the relay needs.
type Publisher interface {
	Enabled() bool
	PublishEvent(ctx context.Context, topic string, event mykafka.Event) error
}

// Relay routes order events to their owner. With Kafka enabled the event goes
// through the order topic and reaches the hub via Bridge on every instance;
// otherwise it is handed to the local hub directly.
type Relay struct {
	Hub       *Hub
	Publisher Publisher
	Metrics   *metrics.Metrics

	inflight sync.WaitGroup
}

func NewRelay(hub *Hub, pub Publisher, m *metrics.Metrics) *Relay {
	return &Relay{Hub: hub, Publisher: pub, Metrics: m}
}

// NotifyOrder is best-effort and never blocks or fails the caller. The Kafka
// write runs in its own goroutine, detached from the request context.
func (r *Relay) NotifyOrder(ctx context.Context, event string, o *models.Order) {
	if r == nil || o == nil {
		return
	}
	l := logging.FromContext(ctx).With("svc", "notify", "event", event, "order_id", o.ID)
	group := GroupFor(o.UserID)

	if r.Publisher != nil && r.Publisher.Enabled() {
		evt := mykafka.NewEvent(event, group, o)
		ctx = context.WithoutCancel(ctx)
		r.inflight.Add(1)
		go func() {
			defer r.inflight.Done()
			if err := r.Publisher.PublishEvent(ctx, mykafka.TopicOrders, evt); err != nil {
				l.Warn("order_event_publish_failed", "error", err)
				return
			}
			r.published(event)
		}()
		return
	}

	n := r.Hub.Publish(group, Message{Type: event, Group: group, Payload: o})
	r.published(event)
	l.Debug("order_event_delivered", "subscribers", n)
}

func (r *Relay) published(event string) {
	if r.Metrics != nil {
		r.Metrics.NotificationPublished(event)
	}
}

// Wait blocks until every pending Kafka write has finished. Call it before
// closing the producer.
func (r *Relay) Wait() {
	if r != nil {
		r.inflight.Wait()
	}
}
