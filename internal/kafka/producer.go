package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event types published on the booking events and notifications topics.
const (
	EventBookingCreated  = "booking_created"
	EventBookingDeleted  = "booking_deleted"
	EventTicketPurchased = "ticket_purchased"
	EventTicketSold      = "ticket_sold"
	EventTicketDeleted   = "ticket_deleted"
)

// Event is the single payload shape for every topic. Booking events fill
// the booking fields, inventory events the ticket fields; consumers switch
// on Type.
type Event struct {
	Type         string    `json:"type"`
	BookingID    string    `json:"booking_id,omitempty"`
	TicketID     string    `json:"ticket_id,omitempty"`
	PNR          string    `json:"pnr,omitempty"`
	Airline      string    `json:"airline,omitempty"`
	Route        string    `json:"route,omitempty"`
	CustomerName string    `json:"customer_name,omitempty"`
	Email        string    `json:"email,omitempty"`
	Amount       int64     `json:"amount"`
	Actor        string    `json:"actor"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type Producer struct {
	writer *kafka.Writer
}

// NewProducer builds a synchronous writer shared across topics. Messages
// are keyed by booking or ticket id and hashed onto partitions, so events
// for one record stay ordered.
func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("write to %s: %w", topic, err)
	}
	return nil
}

// PublishWithRetry retries with a linear backoff, giving up early when the
// context is canceled.
func (p *Producer) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if lastErr = p.Publish(ctx, topic, key, payload); lastErr == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
		}
	}
	return fmt.Errorf("publish to %s after %d attempts: %w", topic, maxRetries, lastErr)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
