package invoiceerrors

import (
	"go-derma/internal/shared/apperror"
	"net/http"
)

var (
	ErrInvoiceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Invoice not found",
		http.StatusNotFound,
	)

	ErrSetNotFound = apperror.New(
		apperror.CodeNotFound,
		"No invoices found for this set",
		http.StatusNotFound,
	)

	ErrNoBillsForSet = apperror.New(
		apperror.CodeNotFound,
		"No bills found for this set number",
		http.StatusNotFound,
	)

	ErrDuplicateInvoiceNumber = apperror.New(
		apperror.CodeConflict,
		"Invoice number already exists",
		http.StatusConflict,
	)

	ErrInvalidStatus = apperror.New(
		apperror.CodeValidation,
		"Status must be one of Pending, Approved, Rejected, On Hold",
		http.StatusBadRequest,
	)

	ErrInvalidDate = apperror.New(
		apperror.CodeValidation,
		"Date must be RFC3339 or YYYY-MM-DD",
		http.StatusBadRequest,
	)

	ErrInvalidOwner = apperror.New(
		apperror.CodeUnauthorized,
		"Unauthorized",
		http.StatusUnauthorized,
	)
)
