package errors

import (
	"errors"
	"strings"

	"github.com/randalmurphal/appforge/auth"
	"github.com/randalmurphal/appforge/registry"
	"github.com/randalmurphal/appforge/render"
)

// IsFatal reports whether err is one of the preconditions that abort a run
// before or during propagation: missing registry, missing template or no
// credential.
func IsFatal(err error) bool {
	return errors.Is(err, registry.ErrConfigMissing) ||
		errors.Is(err, render.ErrTemplateMissing) ||
		errors.Is(err, auth.ErrCredentialUnavailable)
}

// IsAuthError checks if an error is authentication-related.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrNotAuthenticated) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "bad credentials") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "authentication failed") ||
		strings.Contains(errStr, "401")
}

// IsConnectionError checks if an error is connection-related.
// This includes TLS errors, timeouts, and network connectivity issues.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrConnectionFailed) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	// Network connectivity
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "could not resolve host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "dial tcp") {
		return true
	}
	// TLS/certificate errors
	if strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "x509") {
		return true
	}
	// Timeout errors
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "timed out") ||
		strings.Contains(errStr, "deadline exceeded")
}

// IsPermissionError checks if an error is permission-related.
func IsPermissionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrPermissionDenied) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "permission denied") ||
		(strings.Contains(errStr, "permission to") && strings.Contains(errStr, "denied")) ||
		strings.Contains(errStr, "forbidden") ||
		strings.Contains(errStr, "403")
}
