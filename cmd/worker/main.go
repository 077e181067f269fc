package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mkravets/flightdesk/config"
	"github.com/mkravets/flightdesk/internal/email"
	"github.com/mkravets/flightdesk/internal/kafka"
	"github.com/mkravets/flightdesk/internal/logger"
)

// The worker consumes reservation events and sends user notifications,
// keeping the request path free of delivery latency.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ReservationsTopic)
	defer consumer.Close()

	sender := email.NewSender()

	logger.Info("worker started", zap.String("topic", cfg.Kafka.ReservationsTopic))

	err = consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
		var event kafka.ReservationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("decode event", zap.Error(err))
			return nil
		}
		if err := sender.Send(ctx, event); err != nil {
			logger.Error("send notification", zap.Int64("reservation_id", event.ReservationID), zap.Error(err))
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("consumer error", zap.Error(err))
	}
}
