package access

import "errors"

var (
	// ErrUnauthenticated means the caller presented no identity.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the caller is known but is not an administrator.
	ErrForbidden = errors.New("administrator access required")
	// ErrAccessDenied means the caller is known but has no approved access to the document.
	ErrAccessDenied = errors.New("access to this document has not been approved")
	ErrNotFound     = errors.New("not found")
	// ErrInvalidOrExpired covers both claimed and timed-out invites; callers cannot tell them apart.
	ErrInvalidOrExpired  = errors.New("invite is invalid or has expired")
	ErrConflict          = errors.New("conflict")
	ErrInvalidStatus     = errors.New("status must be one of: approved, revoked")
	ErrInvalidTransition = errors.New("transition not allowed")
	ErrValidation        = errors.New("validation failed")
)
