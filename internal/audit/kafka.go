package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tokengate/internal/platform/kafka/producer"
	"tokengate/pkg/domain"
)

// DefaultTopic is the Kafka topic notification records are published to.
const DefaultTopic = "tokengate.ledger.events"

// kafkaProducer is the slice of the platform producer the sink needs.
type kafkaProducer interface {
	ProduceAsync(msg *producer.Message) error
}

// KafkaSink publishes notification records to Kafka as JSON. It is
// write-only: reads are served by another sink behind a TeeStore.
type KafkaSink struct {
	producer kafkaProducer
	topic    string
}

// NewKafkaSink builds a sink over the given producer. An empty topic falls
// back to DefaultTopic.
func NewKafkaSink(p kafkaProducer, topic string) *KafkaSink {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaSink{producer: p, topic: topic}
}

// eventPayload is the wire shape of a notification record.
type eventPayload struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Action        string    `json:"action"`
	Actor         string    `json:"actor,omitempty"`
	Account       string    `json:"account,omitempty"`
	Counterparty  string    `json:"counterparty,omitempty"`
	Amount        uint64    `json:"amount"`
	BalanceBefore uint64    `json:"balance_before"`
	BalanceAfter  uint64    `json:"balance_after"`
	Decision      string    `json:"decision"`
	Reason        string    `json:"reason,omitempty"`
	RequestID     string    `json:"request_id,omitempty"`
}

func (s *KafkaSink) Append(_ context.Context, event Event) error {
	payload, err := json.Marshal(eventPayload{
		ID:            event.ID,
		Timestamp:     event.Timestamp,
		Action:        event.Action,
		Actor:         event.Actor.String(),
		Account:       event.Account.String(),
		Counterparty:  event.Counterparty.String(),
		Amount:        event.Amount,
		BalanceBefore: event.BalanceBefore,
		BalanceAfter:  event.BalanceAfter,
		Decision:      event.Decision,
		Reason:        event.Reason,
		RequestID:     event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	return s.producer.ProduceAsync(&producer.Message{
		Topic: s.topic,
		Key:   []byte(event.Account),
		Value: payload,
		Headers: map[string]string{
			"action": event.Action,
		},
	})
}

// ListByAccount is unsupported on the Kafka sink.
func (s *KafkaSink) ListByAccount(_ context.Context, _ domain.Address) ([]Event, error) {
	return nil, ErrNotFound
}
