package events

import "time"

const InvoiceSetTopic = "derma.invoice.set.v1"

const EventInvoiceSetStatusChanged = "invoice_set_status_changed"

type InvoiceSetStatusChangedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	SetNumber  string    `json:"set_number"`
	Status     string    `json:"status"`
	Affected   int64     `json:"affected"`
	ReviewedBy string    `json:"reviewed_by"`
	OccurredAt time.Time `json:"occurred_at"`
}
