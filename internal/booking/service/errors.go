package service

import "errors"

var (
	// ErrInvalidToken covers every session-token failure: bad signature,
	// expiry, missing subject. Callers must not learn which.
	ErrInvalidToken = errors.New("invalid_token")

	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailTaken         = errors.New("email_taken")
	ErrNotFound           = errors.New("not_found")
	ErrForbidden          = errors.New("forbidden")
	ErrBadCurrentPassword = errors.New("bad_current_password")
	ErrAdminSelfDelete    = errors.New("admin_self_delete")
	ErrInvalidResetToken  = errors.New("invalid_reset_token")

	ErrSlotTaken        = errors.New("slot_taken")
	ErrTooCloseToStart  = errors.New("too_close_to_start")
	ErrInvalidStartTime = errors.New("invalid_start_time")
)
