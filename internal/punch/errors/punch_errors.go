package puncherrors

import (
	"go-derma/internal/shared/apperror"
	"net/http"
)

var (
	ErrPunchNotFound = apperror.New(
		apperror.CodeNotFound,
		"Punch not found",
		http.StatusNotFound,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user ID",
		http.StatusBadRequest,
	)

	ErrAlreadyPunchedIn = apperror.New(
		apperror.CodeConflict,
		"Already punched in",
		http.StatusConflict,
	)

	ErrAlreadyPunchedInToday = apperror.New(
		apperror.CodeConflict,
		"Already punched in today",
		http.StatusConflict,
	)

	ErrNotPunchedIn = apperror.New(
		apperror.CodeConflict,
		"Not punched in",
		http.StatusConflict,
	)

	ErrPunchInFirst = apperror.New(
		apperror.CodeConflict,
		"Punch in first",
		http.StatusConflict,
	)

	ErrBreakAlreadyStarted = apperror.New(
		apperror.CodeConflict,
		"Break already started",
		http.StatusConflict,
	)

	ErrNoActiveBreak = apperror.New(
		apperror.CodeConflict,
		"No active break",
		http.StatusConflict,
	)
)
