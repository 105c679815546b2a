package pr

import (
	"fmt"

	"go.uber.org/zap"
)

// Backend names accepted by New.
const (
	BackendAPI = "api" // GitHub REST API
	BackendCLI = "gh"  // gh command line tool
)

// Config holds settings shared by all backends.
type Config struct {
	// BaseURL overrides the API endpoint (api backend), e.g. for tests or
	// GitHub Enterprise.
	BaseURL string

	// Host is passed to gh as GH_HOST when not github.com (gh backend).
	Host string

	Logger *zap.Logger
}

// New creates a provider for repo ("owner/name") authenticated with token.
func New(backend, repo, token string, cfg Config) (Provider, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	switch backend {
	case BackendAPI, "":
		owner, name, err := ParseRepo(repo)
		if err != nil {
			return nil, err
		}
		return NewGitHubProvider(token, owner, name, cfg)
	case BackendCLI:
		return NewCLIProvider(token, repo, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
