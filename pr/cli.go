package pr

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/randalmurphal/appforge/git"
)

// CLIProvider implements Provider by running the gh command line tool.
// The token is passed to gh through GH_TOKEN, never as an argument.
type CLIProvider struct {
	runner git.CommandRunner
	repo   string
	logger *zap.Logger
}

// NewCLIProvider creates a gh-backed provider for repo ("owner/name").
func NewCLIProvider(token, repo string, cfg Config) (*CLIProvider, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}
	if _, _, err := ParseRepo(repo); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	env := append(os.Environ(), "GH_TOKEN="+token, "GH_PROMPT_DISABLED=1")
	if cfg.Host != "" && cfg.Host != "github.com" {
		env = append(env, "GH_HOST="+cfg.Host)
	}

	return &CLIProvider{
		runner: &git.ExecRunner{Env: env, Logger: logger, Redact: []string{token}},
		repo:   repo,
		logger: logger,
	}, nil
}

// WithRunner replaces the command runner, for tests.
func (p *CLIProvider) WithRunner(runner git.CommandRunner) *CLIProvider {
	p.runner = runner
	return p
}

// CreatePR creates a new pull request. When gh prints no URL the raw output
// is kept as the reference.
func (p *CLIProvider) CreatePR(_ context.Context, opts Options) (*PullRequest, error) {
	args := []string{"pr", "create",
		"--repo", p.repo,
		"--head", opts.Head,
		"--base", opts.base(),
		"--title", opts.Title,
		"--body", opts.Body,
	}
	if opts.Draft {
		args = append(args, "--draft")
	}

	out, err := p.runner.Run("", "gh", args...)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return nil, ErrExists
		}
		if strings.Contains(err.Error(), "No commits between") {
			return nil, ErrNoChanges
		}
		return nil, fmt.Errorf("gh pr create: %w", err)
	}

	result := &PullRequest{Title: opts.Title, Head: opts.Head, Base: opts.base(), State: StateOpen}
	ref, ok := ParseReference(out)
	if ok {
		result.URL = ref
		result.ID = NumberFromURL(ref)
	} else {
		p.logger.Warn("no pull request URL in gh output, keeping raw output",
			zap.String("repo", p.repo),
			zap.String("output", ref))
		result.Raw = ref
	}
	return result, nil
}

// AddComment adds a comment to a pull request.
func (p *CLIProvider) AddComment(_ context.Context, id int, body string) error {
	_, err := p.runner.Run("", "gh", "pr", "comment", strconv.Itoa(id),
		"--repo", p.repo,
		"--body", body)
	if err != nil {
		return fmt.Errorf("gh pr comment: %w", err)
	}
	return nil
}

type ghListEntry struct {
	Number      int    `json:"number"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	HeadRefName string `json:"headRefName"`
	BaseRefName string `json:"baseRefName"`
}

// FindOpenPR returns the open pull request from head into base.
func (p *CLIProvider) FindOpenPR(_ context.Context, head, base string) (*PullRequest, error) {
	if base == "" {
		base = DefaultBase
	}
	out, err := p.runner.Run("", "gh", "pr", "list",
		"--repo", p.repo,
		"--head", head,
		"--base", base,
		"--state", "open",
		"--limit", "1",
		"--json", "number,url,title,headRefName,baseRefName")
	if err != nil {
		return nil, fmt.Errorf("gh pr list: %w", err)
	}

	var entries []ghListEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		return nil, fmt.Errorf("decode gh pr list output: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}

	e := entries[0]
	return &PullRequest{
		ID:    e.Number,
		URL:   e.URL,
		Title: e.Title,
		State: StateOpen,
		Head:  e.HeadRefName,
		Base:  e.BaseRefName,
	}, nil
}
