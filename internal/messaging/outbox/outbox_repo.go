package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-derma/internal/shared/contextutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

type Event struct {
	ID            string
	RequestID     string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	Status        string
	RetryCount    int
	NextRetryAt   time.Time
}

// NewEvent marshals payload into a pending event and stamps it with the
// request id carried by ctx.
func NewEvent(ctx context.Context, aggregateType, aggregateID, eventType, topic string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       data,
		Status:        StatusPending,
	}, nil
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event Event) error
	ListPending(ctx context.Context, limit int) ([]Event, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event Event) error {
	if err := Validate(event); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO outbox_events (
			id, request_id, aggregate_type, aggregate_id, event_type, topic, payload, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.RequestID, event.AggregateType,
		event.AggregateID, event.EventType, event.Topic, event.Payload, event.Status,
	).Error
}

type eventRow struct {
	ID            string
	RequestID     string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	Status        string
	RetryCount    int
	NextRetryAt   time.Time
}

func (r *repository) ListPending(ctx context.Context, limit int) ([]Event, error) {
	var rows []eventRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			id::text AS id,
			COALESCE(request_id, '') AS request_id,
			aggregate_type,
			aggregate_id,
			event_type,
			topic,
			payload,
			status,
			retry_count,
			COALESCE(next_retry_at, created_at) AS next_retry_at
		FROM outbox_events
		WHERE status IN (?, ?)
			AND (next_retry_at IS NULL OR next_retry_at <= NOW())
		ORDER BY created_at ASC
		LIMIT ?`,
		StatusPending, StatusFailed, limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, Event(row))
	}
	return out, nil
}

func (r *repository) MarkSent(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE outbox_events
		SET status = ?, processed_at = NOW(), error_message = NULL, updated_at = NOW()
		WHERE id = ?`,
		StatusSent, id,
	).Error
}

// MarkFailed backs off 15s per attempt, capped at ten attempts' worth.
func (r *repository) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE outbox_events
		SET
			status = ?,
			retry_count = retry_count + 1,
			error_message = LEFT(?, 500),
			next_retry_at = NOW() + (LEAST(retry_count + 1, 10) * INTERVAL '15 seconds'),
			updated_at = NOW()
		WHERE id = ?`,
		StatusFailed, reason, id,
	).Error
}

func Validate(event Event) error {
	if event.ID == "" {
		return errors.New("outbox id is required")
	}
	if event.Topic == "" {
		return errors.New("outbox topic is required")
	}
	if len(event.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	switch event.Status {
	case StatusPending, StatusSent, StatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", event.Status)
	}
}
