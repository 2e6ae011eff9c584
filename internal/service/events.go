package service

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event mykafka.Event) error
}

type OrderNotifier interface {
	NotifyOrder(ctx context.Context, event string, o *models.Order)
}

// publishAsync hands the event to pub in its own goroutine. Failures are logged
// and never reach the caller. A publisher that reports itself disabled, such as
// a nil *mykafka.Producer, is skipped without starting a goroutine.
func publishAsync(ctx context.Context, pub EventPublisher, topic, eventType, key string, payload any) {
	if pub == nil {
		return
	}
	if e, ok := pub.(interface{ Enabled() bool }); ok && !e.Enabled() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	evt := mykafka.NewEvent(eventType, key, payload)
	go func() {
		if err := pub.PublishEvent(ctx, topic, evt); err != nil {
			logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "type", eventType, "error", err)
		}
	}()
}
