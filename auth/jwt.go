package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	nanoid "github.com/matoous/go-nanoid/v2"
)

// App JWT timing. GitHub rejects assertions valid for more than ten minutes;
// IssuedAt is backdated to tolerate clock drift.
const (
	DefaultAppJWTTTL = 10 * time.Minute
	ClockSkew        = 30 * time.Second
)

// AppJWTConfig holds what is needed to sign a GitHub App assertion.
type AppJWTConfig struct {
	// AppID is the GitHub App identifier, used as the issuer.
	AppID string

	// Key is the App's RSA private key.
	Key *rsa.PrivateKey

	// TTL is the assertion lifetime.
	// Defaults to DefaultAppJWTTTL (10 minutes) if zero.
	TTL time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (c AppJWTConfig) ttl() time.Duration {
	if c.TTL == 0 {
		return DefaultAppJWTTTL
	}
	return c.TTL
}

func (c AppJWTConfig) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// AppClaims are the claims of a GitHub App assertion.
type AppClaims struct {
	jwt.RegisteredClaims
}

// GenerateAppJWT signs an RS256 assertion identifying the App.
func GenerateAppJWT(cfg AppJWTConfig) (string, error) {
	if cfg.AppID == "" {
		return "", errors.New("app ID is required")
	}
	if cfg.Key == nil {
		return "", ErrInvalidKey
	}

	tokenID, err := nanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}

	now := cfg.now()
	claims := AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.AppID,
			IssuedAt:  jwt.NewNumericDate(now.Add(-ClockSkew)),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.ttl())),
			ID:        tokenID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(cfg.Key)
	if err != nil {
		return "", fmt.Errorf("sign app JWT: %w", err)
	}
	return signed, nil
}

// ValidateAppJWT parses an assertion signed by the key matching pub and
// returns its claims.
func ValidateAppJWT(pub *rsa.PublicKey, tokenString string) (*AppClaims, error) {
	claims := &AppClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return pub, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
