package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

type CustomerDetails struct {
	InvoiceNumber string `json:"invoiceNumber"`
	SetNumber     string `json:"setNumber"`
	Name          string `json:"name" binding:"required"`
}

type ProductInput struct {
	ProductID    string           `json:"productId"`
	ProductName  string           `json:"productName" binding:"required"`
	SerialNumber string           `json:"serialNumber"`
	Rate         *decimal.Decimal `json:"rate" binding:"required"`
	Quantity     *int             `json:"quantity" binding:"omitempty,min=1"`
	Discount     *decimal.Decimal `json:"discount"`
	Type         string           `json:"type"`
}

type CreateInvoiceRequest struct {
	CustomerDetails CustomerDetails `json:"customerDetails"`
	Products        []ProductInput  `json:"products" binding:"required,min=1,dive"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

// EditInvoiceRequest leaves a field untouched when it is absent.
type EditInvoiceRequest struct {
	InvoiceNumber *string         `json:"invoiceNumber"`
	CustomerName  *string         `json:"customerName"`
	SetNumber     *string         `json:"setNumber"`
	Status        *Status         `json:"status"`
	Date          *string         `json:"date"`
	Products      *[]ProductInput `json:"products" binding:"omitempty,min=1,dive"`
}

type ItemResponse struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Serial    string          `json:"serial"`
	Rate      decimal.Decimal `json:"rate"`
	Qty       int             `json:"qty"`
	Discount  decimal.Decimal `json:"discount"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
}

type InvoiceResponse struct {
	ID           string          `json:"id"`
	InvoiceNo    string          `json:"invoiceNo"`
	CustomerName string          `json:"customerName"`
	SetNumber    string          `json:"setNumber"`
	Status       Status          `json:"status"`
	CreatedBy    string          `json:"createdBy"`
	Products     []ItemResponse  `json:"products"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// InvoiceDetailResponse carries the submitter's email in CreatedBy.
type InvoiceDetailResponse struct {
	ID           string          `json:"id"`
	InvoiceNo    string          `json:"invoiceNo"`
	CustomerName string          `json:"customerName"`
	CreatedBy    string          `json:"createdBy"`
	Products     []ItemResponse  `json:"products"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	Status       Status          `json:"status"`
	Date         string          `json:"date"`
	SetNumber    string          `json:"setNumber"`
}

type SetSummary struct {
	SetNumber string   `json:"setNumber"`
	Invoices  []string `json:"invoices"`
	User      string   `json:"user"`
	Date      string   `json:"date"`
	Status    Status   `json:"status"`
	Count     int      `json:"count"`
}

type BulkStatusResponse struct {
	SetNumber string `json:"setNumber"`
	Status    Status `json:"status"`
	Affected  int64  `json:"affected"`
}

const dateLayout = "2006-01-02"

func invoiceNo(i Invoice) string {
	if i.InvoiceNumber == nil {
		return ""
	}
	return *i.InvoiceNumber
}

func toItemResponses(items []Item) []ItemResponse {
	resp := make([]ItemResponse, len(items))
	for i, it := range items {
		resp[i] = ItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Serial:    it.Serial,
			Rate:      it.Rate,
			Qty:       it.Qty,
			Discount:  it.Discount,
			Type:      it.Type,
			Amount:    it.Amount(),
		}
	}
	return resp
}

func ToResponse(i Invoice) InvoiceResponse {
	t := i.Totals()
	return InvoiceResponse{
		ID:           i.ID.String(),
		InvoiceNo:    invoiceNo(i),
		CustomerName: i.CustomerName,
		SetNumber:    i.SetNumber,
		Status:       i.Status,
		CreatedBy:    i.CreatedBy.String(),
		Products:     toItemResponses(i.Items),
		Subtotal:     t.Subtotal,
		Discount:     t.Discount,
		Total:        t.Total,
		CreatedAt:    i.CreatedAt,
	}
}

func ToListResponse(invoices []Invoice) []InvoiceResponse {
	resp := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		resp[i] = ToResponse(inv)
	}
	return resp
}

func ToDetailResponse(i Invoice, creatorEmail string) InvoiceDetailResponse {
	t := i.Totals()
	return InvoiceDetailResponse{
		ID:           i.ID.String(),
		InvoiceNo:    invoiceNo(i),
		CustomerName: i.CustomerName,
		CreatedBy:    creatorEmail,
		Products:     toItemResponses(i.Items),
		Subtotal:     t.Subtotal,
		Discount:     t.Discount,
		Total:        t.Total,
		Status:       i.Status,
		Date:         i.CreatedAt.UTC().Format(dateLayout),
		SetNumber:    i.SetNumber,
	}
}
