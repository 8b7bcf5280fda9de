package invoice

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
	StatusOnHold   Status = "On Hold"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusOnHold:
		return true
	}
	return false
}

// StatusFromAction maps the admin action token of a bulk review. Unknown
// tokens reset the set to Pending.
func StatusFromAction(action string) Status {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "approve":
		return StatusApproved
	case "reject":
		return StatusRejected
	case "hold":
		return StatusOnHold
	default:
		return StatusPending
	}
}

// NoSet groups invoices submitted without a set number.
const NoSet = "NO_SET"

type Invoice struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceNumber *string   `gorm:"column:invoice_number;type:varchar(64);uniqueIndex:uq_invoices_number"`
	CustomerName  string    `gorm:"column:customer_name;type:varchar(255);not null"`
	SetNumber     string    `gorm:"column:set_number;type:varchar(64);not null;default:'';index"`
	Status        Status    `gorm:"column:status;type:varchar(20);not null;default:Pending;index"`
	CreatedBy     uuid.UUID `gorm:"column:created_by;type:uuid;not null;index"`
	Items         []Item    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// SetKey is the grouping key used by the admin set listing.
func (i Invoice) SetKey() string {
	if strings.TrimSpace(i.SetNumber) == "" {
		return NoSet
	}
	return i.SetNumber
}

type Item struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID uuid.UUID       `gorm:"column:invoice_id;type:uuid;not null;index"`
	Position  int             `gorm:"column:position;not null"`
	ProductID string          `gorm:"column:product_id;type:varchar(64)"`
	Name      string          `gorm:"column:name;type:varchar(255);not null"`
	Serial    string          `gorm:"column:serial;type:varchar(128)"`
	Rate      decimal.Decimal `gorm:"column:rate;type:numeric(14,2);not null"`
	Qty       int             `gorm:"column:qty;not null;default:1"`
	Discount  decimal.Decimal `gorm:"column:discount;type:numeric(14,2);not null;default:0"`
	Type      string          `gorm:"column:type;type:varchar(64)"`
}

func (Item) TableName() string {
	return "invoice_items"
}

func (it Item) Gross() decimal.Decimal {
	return it.Rate.Mul(decimal.NewFromInt(int64(it.Qty)))
}

// Amount is rate*qty - discount.
func (it Item) Amount() decimal.Decimal {
	return it.Gross().Sub(it.Discount)
}

type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Totals are derived on read and never stored.
func (i Invoice) Totals() Totals {
	t := Totals{Subtotal: decimal.Zero, Discount: decimal.Zero}
	for _, it := range i.Items {
		t.Subtotal = t.Subtotal.Add(it.Gross())
		t.Discount = t.Discount.Add(it.Discount)
	}
	t.Total = t.Subtotal.Sub(t.Discount)
	return t
}
