package service

import "todo_api/internal/apperr"

// Domain errors. Handlers translate them by kind.
var (
	ErrInvalidEmail = apperr.New(apperr.KindValidation, "invalid email")
	ErrWeakSecret   = apperr.New(apperr.KindValidation, "password too short")
	ErrLongSecret   = apperr.New(apperr.KindValidation, "password too long")
	ErrEmailTaken   = apperr.New(apperr.KindConflict, "email already registered")

	// Both login failures share one message so responses do not reveal
	// whether an account exists.
	ErrUserNotFound = apperr.New(apperr.KindAuth, "invalid email or password")
	ErrBadSecret    = apperr.New(apperr.KindAuth, "invalid email or password")

	ErrInvalidToken = apperr.New(apperr.KindAuth, "invalid token")

	ErrTodoNotFound = apperr.New(apperr.KindNotFound, "todo not found")
	ErrEmptyText    = apperr.New(apperr.KindValidation, "text must not be empty")

	errInvalidTimeRange = apperr.New(apperr.KindValidation, "invalid time range: from must be <= to")
)
