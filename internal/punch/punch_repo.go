package punch

import (
	"context"
	"time"

	"go-derma/internal/shared/scope"

	"gorm.io/gorm"
)

//go:generate mockgen -source=punch_repo.go -destination=mock/punch_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, p *Punch) error
	FindByID(ctx context.Context, id string) (*Punch, error)
	FindActiveByUser(ctx context.Context, userID string) (*Punch, error)
	ExistsPunchInBetween(ctx context.Context, userID string, from, to time.Time) (bool, error)
	PunchOut(ctx context.Context, id string, at time.Time, status Status) (int64, error)
	StartBreak(ctx context.Context, id string, at time.Time) (int64, error)
	EndBreak(ctx context.Context, id string, at time.Time, status BreakStatus) (int64, error)
	SetAdminApproved(ctx context.Context, id string, approved bool) (int64, error)
	FindCreatedBetween(ctx context.Context, from, to time.Time) ([]Punch, error)
	FindAll(ctx context.Context) ([]Punch, error)
	FindByUserSince(ctx context.Context, userID string, since time.Time) ([]Punch, error)
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

func (r *repository) Create(ctx context.Context, p *Punch) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Punch, error) {
	var p Punch
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) FindActiveByUser(ctx context.Context, userID string) (*Punch, error) {
	var p Punch
	err := r.db.WithContext(ctx).
		Scopes(scope.User(userID)).
		Where("punch_out_time IS NULL").
		Order("punch_in_time DESC").
		First(&p).Error
	return &p, err
}

func (r *repository) ExistsPunchInBetween(ctx context.Context, userID string, from, to time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Punch{}).
		Scopes(scope.User(userID), scope.Between("punch_in_time", from, to)).
		Count(&count).Error
	return count > 0, err
}

// The transition updates below only match a row still in the expected
// state, so a lost race shows up as zero affected rows.

func (r *repository) PunchOut(ctx context.Context, id string, at time.Time, status Status) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Punch{}).
		Where("id = ? AND punch_out_time IS NULL", id).
		Updates(map[string]any{
			"punch_out_time": at,
			"status":         status,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) StartBreak(ctx context.Context, id string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Punch{}).
		Where("id = ? AND punch_out_time IS NULL AND break_start_time IS NULL", id).
		Update("break_start_time", at)
	return res.RowsAffected, res.Error
}

func (r *repository) EndBreak(ctx context.Context, id string, at time.Time, status BreakStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Punch{}).
		Where("id = ? AND punch_out_time IS NULL AND break_start_time IS NOT NULL AND break_end_time IS NULL", id).
		Updates(map[string]any{
			"break_end_time": at,
			"break_status":   status,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) SetAdminApproved(ctx context.Context, id string, approved bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Punch{}).
		Where("id = ?", id).
		Update("admin_approved", approved)
	return res.RowsAffected, res.Error
}

func (r *repository) FindCreatedBetween(ctx context.Context, from, to time.Time) ([]Punch, error) {
	var punches []Punch
	err := r.db.WithContext(ctx).
		Scopes(scope.CreatedBetween(from, to)).
		Order("created_at DESC").
		Find(&punches).Error
	return punches, err
}

func (r *repository) FindAll(ctx context.Context) ([]Punch, error) {
	var punches []Punch
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&punches).Error
	return punches, err
}

func (r *repository) FindByUserSince(ctx context.Context, userID string, since time.Time) ([]Punch, error) {
	var punches []Punch
	err := r.db.WithContext(ctx).
		Scopes(scope.User(userID), scope.CreatedSince(since)).
		Order("created_at DESC").
		Find(&punches).Error
	return punches, err
}
