package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/appforge/auth"
	"github.com/randalmurphal/appforge/git"
	"github.com/randalmurphal/appforge/registry"
	"github.com/randalmurphal/appforge/render"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// ErrorMessenger provides customizable error messages.
type ErrorMessenger interface {
	ConfigMissingMessage() (message, suggestion string)
	TemplateMissingMessage() (message, suggestion string)
	CredentialUnavailableMessage() (message, suggestion string)
	NotInGitRepoMessage() (message, suggestion string)
	AuthErrorMessage() (message, suggestion string)
	PermissionDeniedMessage() (message, suggestion string)
	ConnectionErrorMessage() (message, suggestion string)
}

// DefaultMessenger provides default error messages.
type DefaultMessenger struct{}

func (m DefaultMessenger) ConfigMissingMessage() (string, string) {
	return "The application registry was not found in this checkout.",
		"Run from the repository root or set registry_path."
}

func (m DefaultMessenger) TemplateMissingMessage() (string, string) {
	return "The template application directory does not exist.",
		"Check applications_dir and template_app."
}

func (m DefaultMessenger) CredentialUnavailableMessage() (string, string) {
	return "Could not obtain a GitHub App installation token.",
		"Check APP_ID, APP_KEY and INSTALLATION_ID."
}

func (m DefaultMessenger) NotInGitRepoMessage() (string, string) {
	return "This command must be run from within a git repository.",
		"Run it from the checkout of the deploy repository."
}

func (m DefaultMessenger) AuthErrorMessage() (string, string) {
	return "The remote rejected the token.",
		"Check that the token is valid and has not expired."
}

func (m DefaultMessenger) PermissionDeniedMessage() (string, string) {
	return "The token does not have permission for this repository.",
		"Check that the App is installed on the repository with write access."
}

func (m DefaultMessenger) ConnectionErrorMessage() (string, string) {
	return "Cannot reach the remote.",
		"Check the network connection and github_host."
}

// WrapConfig configures error wrapping behavior.
type WrapConfig struct {
	Messenger ErrorMessenger
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom error messenger.
func WithMessenger(m ErrorMessenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

func getMessenger(opts []Option) ErrorMessenger {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.Messenger
}

// Wrap turns known failures into a CLIError with guidance. The original
// error stays in the chain and its text goes into Details. Unknown errors
// and errors that are already a CLIError are returned unchanged.
func Wrap(err error, opts ...Option) error {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	m := getMessenger(opts)
	var msg, suggestion string
	switch {
	case errors.Is(err, registry.ErrConfigMissing):
		msg, suggestion = m.ConfigMissingMessage()
	case errors.Is(err, render.ErrTemplateMissing):
		msg, suggestion = m.TemplateMissingMessage()
	case errors.Is(err, auth.ErrCredentialUnavailable):
		msg, suggestion = m.CredentialUnavailableMessage()
	case errors.Is(err, git.ErrNotGitRepo):
		msg, suggestion = m.NotInGitRepoMessage()
	case IsAuthError(err):
		msg, suggestion = m.AuthErrorMessage()
		err = fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	case IsPermissionError(err):
		msg, suggestion = m.PermissionDeniedMessage()
		err = fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case IsConnectionError(err):
		msg, suggestion = m.ConnectionErrorMessage()
		err = fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	default:
		return err
	}

	return &CLIError{
		Err:        err,
		Message:    msg,
		Details:    err.Error(),
		Suggestion: suggestion,
	}
}

// ExitCode maps an error returned by a command to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	default:
		return ExitFailure
	}
}
