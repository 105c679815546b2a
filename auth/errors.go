package auth

import "errors"

// Authentication errors.
var (
	// ErrCredentialUnavailable indicates no installation token could be obtained.
	ErrCredentialUnavailable = errors.New("credential unavailable")

	// ErrInvalidToken indicates the token is malformed or has an invalid signature.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired indicates the token has expired.
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidKey indicates the App private key could not be parsed.
	ErrInvalidKey = errors.New("invalid private key")
)
