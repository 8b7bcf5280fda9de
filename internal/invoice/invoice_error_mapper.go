package invoice

import (
	"errors"
	"strings"

	invoiceerrors "go-derma/internal/invoice/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const invoiceNumberIndex = "uq_invoices_number"

func isDuplicateInvoiceNumber(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == invoiceNumberIndex
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), invoiceNumberIndex)
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invoiceerrors.ErrInvoiceNotFound
	}
	if isDuplicateInvoiceNumber(err) {
		return invoiceerrors.ErrDuplicateInvoiceNumber
	}
	return err
}
