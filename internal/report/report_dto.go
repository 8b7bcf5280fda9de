package report

import (
	"go-derma/internal/invoice"
	"go-derma/internal/user"

	"github.com/shopspring/decimal"
)

type CustomerInvoices struct {
	User     user.UserResponse         `json:"user"`
	Invoices []invoice.InvoiceResponse `json:"invoices"`
}

type Stats struct {
	TotalInvoices int             `json:"totalInvoices"`
	ApprovedCount int             `json:"approvedCount"`
	PendingCount  int             `json:"pendingCount"`
	RejectedCount int             `json:"rejectedCount"`
	OnHoldCount   int             `json:"onHoldCount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}

type UserDetails struct {
	User     user.UserResponse         `json:"user"`
	Invoices []invoice.InvoiceResponse `json:"invoices"`
	Stats    Stats                     `json:"stats"`
}

// ComputeStats counts invoices per status and sums their totals.
func ComputeStats(invoices []invoice.Invoice) Stats {
	s := Stats{TotalInvoices: len(invoices), TotalAmount: decimal.Zero}
	for _, inv := range invoices {
		switch inv.Status {
		case invoice.StatusApproved:
			s.ApprovedCount++
		case invoice.StatusRejected:
			s.RejectedCount++
		case invoice.StatusOnHold:
			s.OnHoldCount++
		default:
			s.PendingCount++
		}
		s.TotalAmount = s.TotalAmount.Add(inv.Totals().Total)
	}
	return s
}
