package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"seatlease/pkg/model"
)

type Type string

const (
	TypeLeaseAcquired Type = "lease.acquired"
	TypeLeaseReleased Type = "lease.released"
	TypeLeaseRemoved  Type = "lease.removed"
)

// Envelope is the wire form of a lease lifecycle event. Messages are keyed
// by event id so consumers see per-event ordering.
type Envelope struct {
	Type       Type      `json:"type"`
	LockID     string    `json:"lock_id"`
	EventID    string    `json:"event_id"`
	CustomerID string    `json:"customer_id"`
	SeatIDs    []string  `json:"seat_ids"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher builds a publisher over one topic. Writes require acks
// from all replicas; ordering within an event comes from hash balancing on
// the message key.
func NewKafkaPublisher(brokers []string, topic string) (Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
	}

	return &kafkaPublisher{writer: writer}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, env Envelope) error {
	if env.OccurredAt.IsZero() {
		env.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(env.EventID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(env.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", env.Type, err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// FromLease fills an envelope from a lease document.
func FromLease(t Type, lease *model.Lease) Envelope {
	seatIDs := make([]string, 0, len(lease.SeatIDs))
	for _, id := range lease.SeatIDs {
		seatIDs = append(seatIDs, id.Hex())
	}
	return Envelope{
		Type:       t,
		LockID:     lease.LockID,
		EventID:    lease.EventID.Hex(),
		CustomerID: lease.CustomerID.Hex(),
		SeatIDs:    seatIDs,
		ExpiresAt:  lease.ExpiresAt,
		OccurredAt: time.Now().UTC(),
	}
}

// NewNopPublisher is used when no brokers are configured; publishing is an
// optional side channel, never a dependency of the lease state machine.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Envelope) error { return nil }
func (nopPublisher) Close() error                            { return nil }
