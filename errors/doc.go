// Package errors classifies command failures and adds user-facing guidance.
//
// Fatal preconditions (IsFatal):
//   - registry.ErrConfigMissing: the registry file is absent
//   - render.ErrTemplateMissing: the template application is absent
//   - auth.ErrCredentialUnavailable: no installation token
//
// Remote failures are recognized by their diagnostic text (IsAuthError,
// IsPermissionError, IsConnectionError) so the CLI can suggest a fix.
//
// Example usage:
//
//	if err := cmd.Execute(); err != nil {
//	    fmt.Fprintln(os.Stderr, errors.Wrap(err))
//	    os.Exit(errors.ExitCode(err))
//	}
package errors
