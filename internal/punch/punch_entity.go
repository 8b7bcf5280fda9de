package punch

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive       Status = "Active"
	StatusCompleted    Status = "Completed"
	StatusForcedLogout Status = "Forced Logout"
)

type BreakStatus string

const (
	BreakNormal   BreakStatus = "Normal"
	BreakExceeded BreakStatus = "Exceeded"
)

// Punch is one attendance session. A user has at most one row whose
// punch_out_time is null; the partial index uq_punches_one_active backs that.
type Punch struct {
	ID             uuid.UUID    `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID         uuid.UUID    `gorm:"column:user_id;type:uuid;not null;index"`
	PunchInTime    time.Time    `gorm:"column:punch_in_time;not null;index"`
	PunchOutTime   *time.Time   `gorm:"column:punch_out_time"`
	BreakStartTime *time.Time   `gorm:"column:break_start_time"`
	BreakEndTime   *time.Time   `gorm:"column:break_end_time"`
	Status         Status       `gorm:"column:status;type:varchar(20);not null;default:Active"`
	BreakStatus    *BreakStatus `gorm:"column:break_status;type:varchar(20)"`
	AdminApproved  bool         `gorm:"column:admin_approved;not null;default:false"`
	CreatedAt      time.Time    `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt      time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (Punch) TableName() string {
	return "punches"
}

// ResolveOutStatus marks a shift shorter than minShift as a forced logout.
func ResolveOutStatus(in, out time.Time, minShift time.Duration) Status {
	if out.Sub(in) < minShift {
		return StatusForcedLogout
	}
	return StatusCompleted
}

func ResolveBreakStatus(start, end time.Time, maxBreak time.Duration) BreakStatus {
	if end.Sub(start) > maxBreak {
		return BreakExceeded
	}
	return BreakNormal
}

// TotalSeconds is nil until the punch is closed.
func (p Punch) TotalSeconds() *int64 {
	if p.PunchOutTime == nil {
		return nil
	}
	secs := int64(p.PunchOutTime.Sub(p.PunchInTime).Seconds())
	return &secs
}
