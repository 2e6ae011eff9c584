package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type envelope struct {
	Type    string          `json:"type"`
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
}

// Reader is the subset of *kafka.Reader the bridge consumes.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Bridge feeds order events read from Kafka into the local hub.
type Bridge struct {
	Hub    *Hub
	Reader Reader
	Log    *slog.Logger
}

// Run blocks until ctx is cancelled or the reader is closed.
func (b *Bridge) Run(ctx context.Context) error {
	l := b.Log
	if l == nil {
		l = slog.Default()
	}
	l = l.With("svc", "notify_bridge")

	for {
		msg, err := b.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			l.Warn("kafka_read_error", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(2 * time.Second):
			}
			continue
		}
		b.dispatch(l, msg)
	}
}

func (b *Bridge) dispatch(l *slog.Logger, msg kafka.Message) {
	var evt envelope
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		l.Warn("event_decode_error", "error", err)
		return
	}
	group := evt.Key
	if group == "" {
		group = string(msg.Key)
	}
	if group == "" || evt.Type == "" {
		return
	}
	n := b.Hub.Publish(group, Message{Type: evt.Type, Group: group, Payload: evt.Payload})
	l.Debug("order_event_delivered", "event", evt.Type, "group", group, "subscribers", n)
}

func (b *Bridge) Close() error {
	return b.Reader.Close()
}
