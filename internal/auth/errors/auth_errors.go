package autherrors

import (
	"go-derma/internal/shared/apperror"
	"net/http"
)

var (
	// Unknown email and wrong password share this error so that callers
	// cannot probe which accounts exist.
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid credentials",
		http.StatusUnauthorized,
	)

	ErrAccountPending = apperror.New(
		apperror.CodeForbidden,
		"Account is awaiting approval",
		http.StatusForbidden,
	)

	ErrEmailAlreadyRegistered = apperror.New(
		apperror.CodeConflict,
		"Email is already registered",
		http.StatusConflict,
	)

	ErrTokenGenerationFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to generate token",
		http.StatusInternalServerError,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeUnauthorized,
		"Unauthorized",
		http.StatusUnauthorized,
	)
)
