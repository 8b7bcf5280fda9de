package punch

import (
	"context"
	"errors"
	"time"

	"go-derma/internal/events"
	"go-derma/internal/messaging/outbox"
	puncherrors "go-derma/internal/punch/errors"
	"go-derma/internal/shared/contextutil"
	"go-derma/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=punch_service.go -destination=mock/punch_service_mock.go -package=mock
type Service interface {
	PunchIn(ctx context.Context, userID string) (PunchResponse, error)
	PunchOut(ctx context.Context, userID string) (PunchResponse, error)
	StartBreak(ctx context.Context, userID string) (PunchResponse, error)
	EndBreak(ctx context.Context, userID string) (PunchResponse, error)
	Current(ctx context.Context, userID string) (*PunchResponse, error)
	CloseActive(ctx context.Context, userID string) (*PunchResponse, error)
	SetApproval(ctx context.Context, punchID string, approved bool) (PunchResponse, error)
	Today(ctx context.Context) ([]AttendanceRow, error)
	AllRecords(ctx context.Context) ([]PunchRecordResponse, error)
	Recent(ctx context.Context, userID string) ([]PunchResponse, error)
}

type Options struct {
	OncePerDay   bool
	MinShift     time.Duration
	MaxBreak     time.Duration
	RecentWindow time.Duration
	Location     *time.Location
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.MinShift <= 0 {
		o.MinShift = 7 * time.Hour
	}
	if o.MaxBreak <= 0 {
		o.MaxBreak = 60 * time.Minute
	}
	if o.RecentWindow <= 0 {
		o.RecentWindow = 30 * 24 * time.Hour
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type service struct {
	db       *gorm.DB
	repo     Repository
	userRepo user.Repository
	outbox   outbox.Repository
	opts     Options
	logger   *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, userRepo user.Repository, outboxRepo outbox.Repository, opts Options, logger ...*zap.Logger) Service {
	l := zap.L().Named("punch.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("punch.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		userRepo: userRepo,
		outbox:   outboxRepo,
		opts:     opts.withDefaults(),
		logger:   l,
	}
}

func (s *service) now() time.Time {
	return s.opts.Now().UTC()
}

// startOfDay is midnight of the current calendar date in the configured zone.
func (s *service) startOfDay() time.Time {
	local := s.opts.Now().In(s.opts.Location)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.opts.Location)
}

func (s *service) PunchIn(ctx context.Context, userID string) (PunchResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	uid, err := uuid.Parse(userID)
	if err != nil {
		return PunchResponse{}, puncherrors.ErrInvalidUserID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("punch in begin tx failed", zap.String("request_id", rid), zap.Error(tx.Error))
		return PunchResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	_, err = qtx.FindActiveByUser(ctx, userID)
	if err == nil {
		return PunchResponse{}, puncherrors.ErrAlreadyPunchedIn
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("punch in lookup failed", zap.String("user_id", userID), zap.Error(err))
		return PunchResponse{}, err
	}

	if s.opts.OncePerDay {
		start := s.startOfDay()
		exists, err := qtx.ExistsPunchInBetween(ctx, userID, start, start.Add(24*time.Hour))
		if err != nil {
			return PunchResponse{}, err
		}
		if exists {
			return PunchResponse{}, puncherrors.ErrAlreadyPunchedInToday
		}
	}

	now := s.now()
	row := &Punch{
		ID:          uuid.New(),
		UserID:      uid,
		PunchInTime: now,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := qtx.Create(ctx, row); err != nil {
		s.logger.Warn("punch in insert failed", zap.String("user_id", userID), zap.Error(err))
		return PunchResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("punch in commit failed", zap.String("request_id", rid), zap.Error(err))
		return PunchResponse{}, err
	}

	s.logger.Info("punch in success", zap.String("request_id", rid), zap.String("punch_id", row.ID.String()))
	return ToResponse(*row), nil
}

func (s *service) PunchOut(ctx context.Context, userID string) (PunchResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	if _, err := uuid.Parse(userID); err != nil {
		return PunchResponse{}, puncherrors.ErrInvalidUserID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("punch out begin tx failed", zap.String("request_id", rid), zap.Error(tx.Error))
		return PunchResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PunchResponse{}, puncherrors.ErrNotPunchedIn
		}
		return PunchResponse{}, err
	}

	now := s.now()
	status := ResolveOutStatus(row.PunchInTime, now, s.opts.MinShift)

	affected, err := qtx.PunchOut(ctx, row.ID.String(), now, status)
	if err != nil {
		s.logger.Error("punch out update failed", zap.String("punch_id", row.ID.String()), zap.Error(err))
		return PunchResponse{}, err
	}
	if affected == 0 {
		// another request closed it first
		return PunchResponse{}, puncherrors.ErrNotPunchedIn
	}

	row.PunchOutTime = &now
	row.Status = status

	if s.outbox != nil {
		evt, err := outbox.NewEvent(ctx, "punch", row.ID.String(), events.EventPunchCompleted, events.PunchTopic,
			events.PunchCompletedEvent{
				EventType:    events.EventPunchCompleted,
				RequestID:    rid,
				PunchID:      row.ID.String(),
				UserID:       userID,
				Status:       string(status),
				PunchIn:      row.PunchInTime,
				PunchOut:     now,
				TotalSeconds: *row.TotalSeconds(),
				OccurredAt:   now,
			})
		if err != nil {
			return PunchResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, evt); err != nil {
			s.logger.Error("punch out outbox persist failed", zap.String("punch_id", row.ID.String()), zap.Error(err))
			return PunchResponse{}, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("punch out commit failed", zap.String("request_id", rid), zap.Error(err))
		return PunchResponse{}, err
	}

	s.logger.Info("punch out success",
		zap.String("request_id", rid),
		zap.String("punch_id", row.ID.String()),
		zap.String("status", string(status)),
	)
	return ToResponse(*row), nil
}

func (s *service) StartBreak(ctx context.Context, userID string) (PunchResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return PunchResponse{}, puncherrors.ErrInvalidUserID
	}

	row, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PunchResponse{}, puncherrors.ErrPunchInFirst
		}
		return PunchResponse{}, err
	}
	if row.BreakStartTime != nil {
		return PunchResponse{}, puncherrors.ErrBreakAlreadyStarted
	}

	now := s.now()
	affected, err := s.repo.StartBreak(ctx, row.ID.String(), now)
	if err != nil {
		return PunchResponse{}, err
	}
	if affected == 0 {
		return PunchResponse{}, puncherrors.ErrBreakAlreadyStarted
	}

	row.BreakStartTime = &now
	s.logger.Debug("break started", zap.String("punch_id", row.ID.String()))
	return ToResponse(*row), nil
}

func (s *service) EndBreak(ctx context.Context, userID string) (PunchResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return PunchResponse{}, puncherrors.ErrInvalidUserID
	}

	row, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PunchResponse{}, puncherrors.ErrNoActiveBreak
		}
		return PunchResponse{}, err
	}
	if row.BreakStartTime == nil || row.BreakEndTime != nil {
		return PunchResponse{}, puncherrors.ErrNoActiveBreak
	}

	now := s.now()
	status := ResolveBreakStatus(*row.BreakStartTime, now, s.opts.MaxBreak)
	affected, err := s.repo.EndBreak(ctx, row.ID.String(), now, status)
	if err != nil {
		return PunchResponse{}, err
	}
	if affected == 0 {
		return PunchResponse{}, puncherrors.ErrNoActiveBreak
	}

	row.BreakEndTime = &now
	row.BreakStatus = &status
	s.logger.Debug("break ended", zap.String("punch_id", row.ID.String()), zap.String("break_status", string(status)))
	return ToResponse(*row), nil
}

func (s *service) Current(ctx context.Context, userID string) (*PunchResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, puncherrors.ErrInvalidUserID
	}
	row, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	resp := ToResponse(*row)
	return &resp, nil
}

// CloseActive punches the user out when a punch is open and is a no-op
// otherwise. Logout relies on it.
func (s *service) CloseActive(ctx context.Context, userID string) (*PunchResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, nil
	}
	if _, err := s.repo.FindActiveByUser(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	resp, err := s.PunchOut(ctx, userID)
	if err != nil {
		if errors.Is(err, puncherrors.ErrNotPunchedIn) {
			return nil, nil
		}
		return nil, err
	}
	return &resp, nil
}

func (s *service) SetApproval(ctx context.Context, punchID string, approved bool) (PunchResponse, error) {
	if _, err := uuid.Parse(punchID); err != nil {
		return PunchResponse{}, puncherrors.ErrPunchNotFound
	}

	affected, err := s.repo.SetAdminApproved(ctx, punchID, approved)
	if err != nil {
		return PunchResponse{}, err
	}
	if affected == 0 {
		return PunchResponse{}, puncherrors.ErrPunchNotFound
	}

	row, err := s.repo.FindByID(ctx, punchID)
	if err != nil {
		return PunchResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("punch approval updated", zap.String("punch_id", punchID), zap.Bool("approved", approved))
	return ToResponse(*row), nil
}

// Today lists every user with their latest punch created today, plus the
// punches of users that no longer exist.
func (s *service) Today(ctx context.Context) ([]AttendanceRow, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	start := s.startOfDay()
	punches, err := s.repo.FindCreatedBetween(ctx, start, start.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	// punches come newest first, so the first one seen per user is the latest
	latest := make(map[string]*Punch, len(punches))
	order := make([]string, 0, len(punches))
	for i := range punches {
		uid := punches[i].UserID.String()
		if _, ok := latest[uid]; ok {
			continue
		}
		latest[uid] = &punches[i]
		order = append(order, uid)
	}

	rows := make([]AttendanceRow, 0, len(users)+len(order))
	known := make(map[string]struct{}, len(users))
	for _, u := range users {
		uid := u.ID.String()
		known[uid] = struct{}{}
		rows = append(rows, attendanceRow(uid, u.Name, u.Email, latest[uid]))
	}
	for _, uid := range order {
		if _, ok := known[uid]; ok {
			continue
		}
		rows = append(rows, attendanceRow(uid, "", "", latest[uid]))
	}
	return rows, nil
}

func (s *service) AllRecords(ctx context.Context) ([]PunchRecordResponse, error) {
	punches, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(punches))
	seen := make(map[string]struct{}, len(punches))
	for _, p := range punches {
		uid := p.UserID.String()
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		ids = append(ids, uid)
	}

	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]user.User, len(users))
	for _, u := range users {
		byID[u.ID.String()] = u
	}

	resp := make([]PunchRecordResponse, len(punches))
	for i, p := range punches {
		owner := byID[p.UserID.String()]
		resp[i] = PunchRecordResponse{
			PunchResponse: ToResponse(p),
			UserName:      owner.Name,
			UserEmail:     owner.Email,
		}
	}
	return resp, nil
}

func (s *service) Recent(ctx context.Context, userID string) ([]PunchResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, puncherrors.ErrInvalidUserID
	}
	punches, err := s.repo.FindByUserSince(ctx, userID, s.now().Add(-s.opts.RecentWindow))
	if err != nil {
		return nil, err
	}
	return ToListResponse(punches), nil
}
