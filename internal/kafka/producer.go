package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// AccountEvent is published on registration milestones.
type AccountEvent struct {
	Type       string    `json:"type"`
	Identifier string    `json:"identifier"`
	Name       string    `json:"name"`
	AccountID  int64     `json:"account_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingEvent is published when seats are reserved or released on a trip.
// Reference identifies the reservation across systems; releases carry the
// empty string.
type BookingEvent struct {
	Type       string    `json:"type"`
	Reference  string    `json:"reference,omitempty"`
	TripID     int64     `json:"trip_id"`
	FlightID   int64     `json:"flight_id"`
	Seats      int       `json:"seats"`
	Identifier string    `json:"identifier"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Topic: topic, Key: []byte(key), Value: data})
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
