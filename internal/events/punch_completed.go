package events

import "time"

const PunchTopic = "derma.punch.v1"

const EventPunchCompleted = "punch_completed"

type PunchCompletedEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	PunchID      string    `json:"punch_id"`
	UserID       string    `json:"user_id"`
	Status       string    `json:"status"`
	PunchIn      time.Time `json:"punch_in"`
	PunchOut     time.Time `json:"punch_out"`
	TotalSeconds int64     `json:"total_seconds"`
	OccurredAt   time.Time `json:"occurred_at"`
}
