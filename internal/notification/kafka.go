package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// DefaultTopic receives statement events when no topic is configured.
const DefaultTopic = "statement_entries"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type entryEvent struct {
	Kind        string    `json:"kind"`
	ExternalKey string    `json:"external_key"`
	Amount      string    `json:"amount"`
	Body        string    `json:"body"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// KafkaNotifier publishes notifications as JSON events keyed by destination,
// so every event of one account lands on the same partition.
type KafkaNotifier struct {
	writer messageWriter
}

// NewKafkaNotifier builds a notifier writing to topic on the given brokers.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaNotifier{writer: &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}}
}

// Send publishes the message.
func (n *KafkaNotifier) Send(ctx context.Context, message Message) error {
	payload, err := json.Marshal(entryEvent{
		Kind:        message.Kind,
		ExternalKey: message.Destination,
		Amount:      message.Amount,
		Body:        message.Body,
		OccurredAt:  message.OccurredAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", message.Kind, err)
	}
	if err := n.writer.WriteMessages(ctx, kafka.Message{Key: []byte(message.Destination), Value: payload}); err != nil {
		return fmt.Errorf("publish %s event: %w", message.Kind, err)
	}
	return nil
}

// Close flushes pending writes and releases the writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
