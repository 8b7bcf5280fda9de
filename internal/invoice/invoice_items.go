package invoice

import (
	"fmt"
	"strings"

	"go-derma/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// buildItems validates product lines and turns them into ordered items.
// Binding tags cover presence; sign checks on money live here because the
// validator cannot compare decimals.
func buildItems(invoiceID uuid.UUID, products []ProductInput) ([]Item, error) {
	if len(products) == 0 {
		return nil, apperror.RequiredField("Products")
	}

	items := make([]Item, 0, len(products))
	for i, p := range products {
		name := strings.TrimSpace(p.ProductName)
		if name == "" {
			return nil, apperror.RequiredField(fmt.Sprintf("Products[%d].ProductName", i))
		}
		if p.Rate == nil {
			return nil, apperror.RequiredField(fmt.Sprintf("Products[%d].Rate", i))
		}
		if p.Rate.IsNegative() {
			return nil, apperror.InvalidField(fmt.Sprintf("Products[%d].Rate", i))
		}

		qty := 1
		if p.Quantity != nil {
			qty = *p.Quantity
		}
		if qty < 1 {
			return nil, apperror.InvalidField(fmt.Sprintf("Products[%d].Quantity", i))
		}

		discount := decimal.Zero
		if p.Discount != nil {
			discount = *p.Discount
		}
		if discount.IsNegative() {
			return nil, apperror.InvalidField(fmt.Sprintf("Products[%d].Discount", i))
		}

		items = append(items, Item{
			ID:        uuid.New(),
			InvoiceID: invoiceID,
			Position:  i,
			ProductID: strings.TrimSpace(p.ProductID),
			Name:      name,
			Serial:    strings.TrimSpace(p.SerialNumber),
			Rate:      *p.Rate,
			Qty:       qty,
			Discount:  discount,
			Type:      strings.TrimSpace(p.Type),
		})
	}
	return items, nil
}
