package errors

import "errors"

// Errors for remote failures that get actionable guidance.
var (
	// ErrNotAuthenticated indicates a token was rejected.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPermissionDenied indicates the token lacks access to the repository.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrConnectionFailed indicates the remote is unreachable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUsage indicates invalid flags or configuration.
	ErrUsage = errors.New("invalid usage")
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)
