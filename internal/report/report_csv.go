package report

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"go-derma/internal/invoice"
	"go-derma/internal/user"
)

var csvHeader = []string{
	"User_ID", "User_Name", "Contact",
	"Invoice_ID", "Invoice_Number", "Set_Number", "Customer_Name", "Status", "Created_At",
	"Product_Name", "Product_Serial", "Product_Qty", "Product_Rate", "Product_Discount", "Product_Amount",
}

// writeInvoiceCSV emits one row per product line, and a single row with empty
// product columns for an invoice without lines. csv.Writer quotes any field
// holding a comma, quote or newline.
func writeInvoiceCSV(owners []user.User, invoices map[string][]invoice.Invoice) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, u := range owners {
		uid := u.ID.String()
		for _, inv := range invoices[uid] {
			no := ""
			if inv.InvoiceNumber != nil {
				no = *inv.InvoiceNumber
			}
			base := []string{
				uid, u.Name, u.Phone,
				inv.ID.String(), no, inv.SetNumber, inv.CustomerName, string(inv.Status),
				inv.CreatedAt.UTC().Format(time.RFC3339),
			}

			if len(inv.Items) == 0 {
				if err := w.Write(append(base, "", "", "", "", "", "")); err != nil {
					return nil, err
				}
				continue
			}
			for _, it := range inv.Items {
				row := append(append([]string{}, base...),
					it.Name,
					it.Serial,
					strconv.Itoa(it.Qty),
					it.Rate.StringFixed(2),
					it.Discount.StringFixed(2),
					it.Amount().StringFixed(2),
				)
				if err := w.Write(row); err != nil {
					return nil, err
				}
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
