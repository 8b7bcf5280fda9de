package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-derma/internal/config"
	"go-derma/internal/messaging/kafka"
	"go-derma/internal/messaging/nats"
	"go-derma/internal/messaging/outbox"
	"go-derma/internal/shared/connection"

	"go.uber.org/zap"
)

// newPublisher picks the broker named by EVENT_BROKER. close releases the
// underlying connection.
func newPublisher(cfg *config.Config) (outbox.Publisher, func(), error) {
	switch cfg.Broker.Kind {
	case config.BrokerNATS:
		nc, err := connection.ConnectNATSWithRetry(cfg.Broker.NATSURL, cfg.Database.MaxRetries)
		if err != nil {
			return nil, nil, err
		}
		return nats.NewPublisher(nc), func() { _ = nc.Drain() }, nil
	case config.BrokerKafka:
		writer, err := connection.ConnectKafkaWithRetry(cfg.Broker.KafkaBrokers, cfg.Database.MaxRetries)
		if err != nil {
			return nil, nil, err
		}
		return kafka.NewPublisher(writer), func() { _ = writer.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported broker %q", cfg.Broker.Kind)
	}
}

func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	publisher, closePublisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	outboxRepo := outbox.NewRepository(gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		outbox.ProcessOutboxEvents(ctx, outboxRepo, publisher, logger, cfg.Broker.PollInterval)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down", zap.String("broker", cfg.Broker.Kind))
	cancel()
	<-done

	return nil
}
