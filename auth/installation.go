package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// Credential is an access token for remote repository operations.
type Credential struct {
	Token     string
	ExpiresAt time.Time // Zero if unknown
}

// String redacts the token.
func (c *Credential) String() string {
	if c == nil || c.Token == "" {
		return "<none>"
	}
	return "<redacted>"
}

// TokenSource produces credentials.
type TokenSource interface {
	Token(ctx context.Context) (*Credential, error)
}

// StaticSource returns a fixed token, e.g. a personal access token.
type StaticSource string

// Token implements TokenSource.
func (s StaticSource) Token(context.Context) (*Credential, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty token", ErrCredentialUnavailable)
	}
	return &Credential{Token: string(s)}, nil
}

// InstallationTokenSource exchanges a GitHub App assertion for an
// installation access token.
type InstallationTokenSource struct {
	AppID          string
	InstallationID int64
	Key            *rsa.PrivateKey

	// BaseURL overrides the API endpoint, e.g. for GitHub Enterprise.
	BaseURL string

	// HTTPClient is the transport under the bearer auth. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client
}

// Token mints a fresh installation token. All failures wrap
// ErrCredentialUnavailable.
func (s *InstallationTokenSource) Token(ctx context.Context) (*Credential, error) {
	if s.AppID == "" || s.InstallationID == 0 || s.Key == nil {
		return nil, fmt.Errorf("%w: app ID, installation ID and private key are required", ErrCredentialUnavailable)
	}

	assertion, err := GenerateAppJWT(AppJWTConfig{AppID: s.AppID, Key: s.Key})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialUnavailable, err)
	}

	client, err := s.client(ctx, assertion)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialUnavailable, err)
	}

	tok, _, err := client.Apps.CreateInstallationToken(ctx, s.InstallationID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create installation token: %v", ErrCredentialUnavailable, err)
	}
	if tok.GetToken() == "" {
		return nil, fmt.Errorf("%w: empty installation token", ErrCredentialUnavailable)
	}

	return &Credential{
		Token:     tok.GetToken(),
		ExpiresAt: tok.GetExpiresAt().Time,
	}, nil
}

func (s *InstallationTokenSource) client(ctx context.Context, assertion string) (*github.Client, error) {
	if s.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.HTTPClient)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: assertion})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	if s.BaseURL != "" {
		base := s.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse base URL: %w", err)
		}
		client.BaseURL = u
	}
	return client, nil
}
