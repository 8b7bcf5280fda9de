package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-derma/internal/bootstrap"
	"go-derma/internal/config"
	"go-derma/internal/events"
	"go-derma/internal/messaging/kafka"
	"go-derma/internal/messaging/nats"
	"go-derma/internal/shared/connection"
	"go-derma/internal/shared/contextutil"

	"go.uber.org/zap"
)

// auditEvent turns one lifecycle event into an audit entry. Payloads that
// cannot be decoded are skipped so they do not block the partition.
func auditEvent(audit bootstrap.AuditLogger, logger *zap.Logger) func(ctx context.Context, topic string, data []byte) error {
	return func(ctx context.Context, topic string, data []byte) error {
		env, err := events.DecodeEnvelope(data)
		if err != nil {
			logger.Warn("undecodable event", zap.String("topic", topic), zap.Error(err))
			return kafka.ErrSkip
		}
		if env.RequestID != "" {
			ctx = contextutil.WithRequestID(ctx, env.RequestID)
		}

		entry, err := auditEntry(env)
		if err != nil {
			logger.Warn("unreadable event payload",
				zap.String("topic", topic),
				zap.String("event_type", env.EventType),
				zap.Error(err),
			)
			return kafka.ErrSkip
		}
		entry.Meta["topic"] = topic
		entry.Meta["occurred_at"] = env.OccurredAt

		audit.Log(ctx, entry)
		return nil
	}
}

func auditEntry(env events.Envelope) (bootstrap.AuditLog, error) {
	switch env.EventType {
	case events.EventInvoiceSetStatusChanged:
		var e events.InvoiceSetStatusChangedEvent
		if err := json.Unmarshal(env.Raw, &e); err != nil {
			return bootstrap.AuditLog{}, err
		}
		return bootstrap.AuditLog{
			Action:  "INVOICE_SET_REVIEWED",
			Message: fmt.Sprintf("set %s marked %s", e.SetNumber, e.Status),
			Meta: map[string]any{
				"set_number":  e.SetNumber,
				"status":      e.Status,
				"affected":    e.Affected,
				"reviewed_by": e.ReviewedBy,
			},
		}, nil

	case events.EventUserRegistrationReviewed:
		var e events.UserRegistrationReviewedEvent
		if err := json.Unmarshal(env.Raw, &e); err != nil {
			return bootstrap.AuditLog{}, err
		}
		verdict := "rejected"
		if e.Approved {
			verdict = "approved"
		}
		return bootstrap.AuditLog{
			Action:  "REGISTRATION_REVIEWED",
			Message: fmt.Sprintf("registration %s %s", e.Email, verdict),
			Meta: map[string]any{
				"user_id":     e.UserID,
				"approved":    e.Approved,
				"reviewed_by": e.ReviewedBy,
			},
		}, nil

	case events.EventPunchCompleted:
		var e events.PunchCompletedEvent
		if err := json.Unmarshal(env.Raw, &e); err != nil {
			return bootstrap.AuditLog{}, err
		}
		return bootstrap.AuditLog{
			Action:  "PUNCH_COMPLETED",
			Message: fmt.Sprintf("punch %s closed as %s", e.PunchID, e.Status),
			Meta: map[string]any{
				"punch_id":      e.PunchID,
				"user_id":       e.UserID,
				"status":        e.Status,
				"total_seconds": e.TotalSeconds,
			},
		}, nil

	default:
		return bootstrap.AuditLog{
			Action:  "UNKNOWN_EVENT",
			Message: env.EventType,
			Meta:    map[string]any{},
		}, nil
	}
}

func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")
	handle := auditEvent(bootstrap.NewZapAuditLogger(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch cfg.Broker.Kind {
	case config.BrokerNATS:
		nc, err := connection.ConnectNATSWithRetry(cfg.Broker.NATSURL, cfg.Database.MaxRetries)
		if err != nil {
			return err
		}
		defer nc.Drain()

		if _, err := nats.Subscribe(ctx, nc, cfg.Broker.ConsumerGroup, events.Topics(), handle, logger); err != nil {
			return err
		}
	case config.BrokerKafka:
		if len(cfg.Broker.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKER is required")
		}
		reader := connection.NewKafkaReader(cfg.Broker.KafkaBrokers, cfg.Broker.ConsumerGroup, events.Topics()...)
		defer reader.Close()

		go kafka.Consume(ctx, reader, handle, logger)
	default:
		return fmt.Errorf("unsupported broker %q", cfg.Broker.Kind)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
