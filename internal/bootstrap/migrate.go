package bootstrap

import (
	"context"
	"fmt"

	"go-derma/internal/invoice"
	"go-derma/internal/punch"
	"go-derma/internal/rbac"
	"go-derma/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// rawMigrations cover tables written through raw SQL and the partial index
// gorm tags cannot express.
var rawMigrations = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id UUID PRIMARY KEY,
		request_id VARCHAR(64),
		aggregate_type VARCHAR(64) NOT NULL,
		aggregate_id VARCHAR(64) NOT NULL,
		event_type VARCHAR(128) NOT NULL,
		topic VARCHAR(255) NOT NULL,
		payload JSONB NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		retry_count INT NOT NULL DEFAULT 0,
		next_retry_at TIMESTAMPTZ,
		error_message TEXT,
		processed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_events_pending ON outbox_events (status, created_at)`,
	`CREATE TABLE IF NOT EXISTS counters (
		scope VARCHAR(64) NOT NULL,
		counter_type VARCHAR(64) NOT NULL,
		last_value BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (scope, counter_type)
	)`,
	// satu punch aktif per user
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_punches_one_active ON punches (user_id) WHERE punch_out_time IS NULL`,
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	log := zap.L().Named("bootstrap.migrate")

	tx := db.WithContext(ctx)
	if err := tx.Exec(rawMigrations[0]).Error; err != nil {
		return fmt.Errorf("enable pgcrypto: %w", err)
	}

	if err := tx.AutoMigrate(
		&user.User{},
		&invoice.Invoice{},
		&invoice.Item{},
		&punch.Punch{},
		&rbac.RolePermission{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range rawMigrations[1:] {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("raw migration: %w", err)
		}
	}

	log.Info("schema migrated")
	return nil
}
