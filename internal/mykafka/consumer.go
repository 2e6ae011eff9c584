package mykafka

import (
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// NewReader builds a group reader that starts at the newest offset when the
// group has nothing committed yet.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
}

// InstanceGroupID names a consumer group private to one instance, so each
// instance reads every message. A stable instance id keeps restarts on the same
// group; without one a random suffix is used.
func InstanceGroupID(service, role, instance string) string {
	if instance == "" {
		instance = uuid.NewString()
	}
	return service + "-" + role + "-" + instance
}
