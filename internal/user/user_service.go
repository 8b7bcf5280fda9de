package user

import (
	"context"
	"time"

	"go-derma/internal/events"
	"go-derma/internal/messaging/outbox"
	"go-derma/internal/shared/contextutil"
	usererrors "go-derma/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	ListPending(ctx context.Context) ([]UserResponse, error)
	Review(ctx context.Context, reviewerID, id string, approve bool) (ReviewResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox outbox.Repository
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, outboxRepo outbox.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{db: db, repo: repo, outbox: outboxRepo, logger: l}
}

func (s *service) ListPending(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.FindPending(ctx)
	if err != nil {
		s.logger.Error("list pending users failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return ToListResponse(users), nil
}

// Review approves a registration or deletes it outright.
func (s *service) Review(ctx context.Context, reviewerID, id string, approve bool) (ReviewResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("review user requested",
		zap.String("request_id", rid),
		zap.String("user_id", id),
		zap.Bool("approve", approve),
	)

	if _, err := uuid.Parse(id); err != nil {
		return ReviewResponse{}, usererrors.ErrInvalidUserID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("review user begin tx failed", zap.String("request_id", rid), zap.Error(tx.Error))
		return ReviewResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	u, err := qtx.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("review user not found", zap.String("user_id", id), zap.Error(err))
		return ReviewResponse{}, mapRepositoryError(err)
	}

	var affected int64
	if approve {
		affected, err = qtx.Approve(ctx, id)
	} else {
		affected, err = qtx.Delete(ctx, id)
	}
	if err != nil {
		s.logger.Error("review user persist failed", zap.String("user_id", id), zap.Error(err))
		return ReviewResponse{}, mapRepositoryError(err)
	}
	if affected == 0 {
		return ReviewResponse{}, usererrors.ErrUserNotFound
	}

	if s.outbox != nil {
		evt, err := outbox.NewEvent(ctx, "user", id, events.EventUserRegistrationReviewed, events.UserRegistrationTopic,
			events.UserRegistrationReviewedEvent{
				EventType:  events.EventUserRegistrationReviewed,
				RequestID:  rid,
				UserID:     id,
				Email:      u.Email,
				Approved:   approve,
				ReviewedBy: reviewerID,
				OccurredAt: time.Now().UTC(),
			})
		if err != nil {
			return ReviewResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, evt); err != nil {
			s.logger.Error("review user outbox persist failed", zap.String("user_id", id), zap.Error(err))
			return ReviewResponse{}, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("review user commit failed", zap.String("request_id", rid), zap.Error(err))
		return ReviewResponse{}, err
	}

	if approve {
		u.IsApproved = true
	}
	s.logger.Info("review user success",
		zap.String("request_id", rid),
		zap.String("user_id", id),
		zap.Bool("approved", approve),
	)

	return ReviewResponse{User: ToResponse(*u), Approved: approve, Deleted: !approve}, nil
}
