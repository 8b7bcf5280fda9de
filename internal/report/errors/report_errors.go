package reporterrors

import (
	"go-derma/internal/shared/apperror"
	"net/http"
)

var ErrUserNotFound = apperror.New(
	apperror.CodeNotFound,
	"User not found",
	http.StatusNotFound,
)
