package events

import "time"

const UserRegistrationTopic = "derma.user.registration.v1"

const EventUserRegistrationReviewed = "user_registration_reviewed"

type UserRegistrationReviewedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Approved   bool      `json:"approved"`
	ReviewedBy string    `json:"reviewed_by"`
	OccurredAt time.Time `json:"occurred_at"`
}
