package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mkravets/flightdesk/internal/logger"
)

const (
	EventReservationBooked = "reservation_booked"
	EventReservationPaid   = "reservation_paid"
)

// ReservationEvent is published after a booking or payment commits.
type ReservationEvent struct {
	Type          string `json:"type"`
	ReservationID int64  `json:"reservation_id"`
	Username      string `json:"username"`
	DayOfMonth    int    `json:"day_of_month"`
	FlightID1     int64  `json:"flight_id1"`
	FlightID2     *int64 `json:"flight_id2,omitempty"`
	Price         int    `json:"price"`
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

func (p *Producer) Publish(ctx context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// PublishWithRetry retries transient broker failures with a linear backoff.
func (p *Producer) PublishWithRetry(ctx context.Context, topic, key string, payload any, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := p.Publish(ctx, topic, key, payload)
		if err == nil {
			return nil
		}
		lastErr = err
		logger.Warn("kafka publish attempt failed", zap.Int("attempt", i+1), zap.Error(err))

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i+1) * 500 * time.Millisecond):
			}
		}
	}
	return fmt.Errorf("publish failed after %d retries: %w", maxRetries, lastErr)
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
