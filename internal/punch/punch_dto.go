package punch

import "time"

type ApprovalRequest struct {
	AdminApproved *bool `json:"adminApproved" binding:"required"`
}

type PunchResponse struct {
	ID             string       `json:"id"`
	UserID         string       `json:"userId"`
	PunchInTime    time.Time    `json:"punchInTime"`
	PunchOutTime   *time.Time   `json:"punchOutTime"`
	BreakStartTime *time.Time   `json:"breakStartTime"`
	BreakEndTime   *time.Time   `json:"breakEndTime"`
	Status         Status       `json:"status"`
	BreakStatus    *BreakStatus `json:"breakStatus"`
	AdminApproved  bool         `json:"adminApproved"`
	TotalSeconds   *int64       `json:"totalSeconds"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// PunchRecordResponse is a punch joined with the owner's identity.
type PunchRecordResponse struct {
	PunchResponse
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

// AttendanceRow is one line of the daily attendance board. Users without a
// punch today have every punch field nil.
type AttendanceRow struct {
	UserID         string       `json:"userId"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	PunchID        *string      `json:"punchId"`
	PunchInTime    *time.Time   `json:"punchInTime"`
	PunchOutTime   *time.Time   `json:"punchOutTime"`
	BreakStartTime *time.Time   `json:"breakStartTime"`
	BreakEndTime   *time.Time   `json:"breakEndTime"`
	Status         *Status      `json:"status"`
	BreakStatus    *BreakStatus `json:"breakStatus"`
	AdminApproved  *bool        `json:"adminApproved"`
	TotalSeconds   *int64       `json:"totalSeconds"`
}

func ToResponse(p Punch) PunchResponse {
	return PunchResponse{
		ID:             p.ID.String(),
		UserID:         p.UserID.String(),
		PunchInTime:    p.PunchInTime,
		PunchOutTime:   p.PunchOutTime,
		BreakStartTime: p.BreakStartTime,
		BreakEndTime:   p.BreakEndTime,
		Status:         p.Status,
		BreakStatus:    p.BreakStatus,
		AdminApproved:  p.AdminApproved,
		TotalSeconds:   p.TotalSeconds(),
		CreatedAt:      p.CreatedAt,
	}
}

func ToListResponse(punches []Punch) []PunchResponse {
	resp := make([]PunchResponse, len(punches))
	for i, p := range punches {
		resp[i] = ToResponse(p)
	}
	return resp
}

func attendanceRow(userID, name, email string, p *Punch) AttendanceRow {
	row := AttendanceRow{UserID: userID, Name: name, Email: email}
	if p == nil {
		return row
	}
	id := p.ID.String()
	in := p.PunchInTime
	status := p.Status
	approved := p.AdminApproved
	row.PunchID = &id
	row.PunchInTime = &in
	row.PunchOutTime = p.PunchOutTime
	row.BreakStartTime = p.BreakStartTime
	row.BreakEndTime = p.BreakEndTime
	row.Status = &status
	row.BreakStatus = p.BreakStatus
	row.AdminApproved = &approved
	row.TotalSeconds = p.TotalSeconds()
	return row
}
