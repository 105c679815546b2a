package pr

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// GitHubProvider implements Provider using the GitHub REST API.
type GitHubProvider struct {
	client *github.Client
	owner  string
	repo   string
	logger *zap.Logger
}

// NewGitHubProvider creates a new GitHub provider.
// token is a personal access token or GitHub App installation token.
func NewGitHubProvider(token, owner, repo string, cfg Config) (*GitHubProvider, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo are required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	client := github.NewClient(tc)

	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse base URL: %w", err)
		}
		client.BaseURL = u
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GitHubProvider{
		client: client,
		owner:  owner,
		repo:   repo,
		logger: logger,
	}, nil
}

// CreatePR creates a new pull request.
func (p *GitHubProvider) CreatePR(ctx context.Context, opts Options) (*PullRequest, error) {
	newPR := &github.NewPullRequest{
		Title: github.String(opts.Title),
		Body:  github.String(opts.Body),
		Base:  github.String(opts.base()),
		Head:  github.String(opts.Head),
		Draft: github.Bool(opts.Draft),
	}

	pr, resp, err := p.client.PullRequests.Create(ctx, p.owner, p.repo, newPR)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
			if strings.Contains(err.Error(), "A pull request already exists") {
				return nil, ErrExists
			}
			if strings.Contains(err.Error(), "No commits between") {
				return nil, ErrNoChanges
			}
		}
		return nil, fmt.Errorf("create PR: %w", err)
	}

	p.logger.Debug("created pull request",
		zap.String("repo", p.owner+"/"+p.repo),
		zap.Int("number", pr.GetNumber()))
	return fromGitHub(pr), nil
}

// AddComment adds a comment to a pull request.
func (p *GitHubProvider) AddComment(ctx context.Context, id int, body string) error {
	_, _, err := p.client.Issues.CreateComment(ctx, p.owner, p.repo, id,
		&github.IssueComment{Body: github.String(body)})
	if err != nil {
		return fmt.Errorf("add comment: %w", err)
	}
	return nil
}

// FindOpenPR returns the open pull request from head into base.
func (p *GitHubProvider) FindOpenPR(ctx context.Context, head, base string) (*PullRequest, error) {
	if base == "" {
		base = DefaultBase
	}
	opts := &github.PullRequestListOptions{
		State:       "open",
		Head:        p.owner + ":" + head,
		Base:        base,
		ListOptions: github.ListOptions{PerPage: 1},
	}

	prs, _, err := p.client.PullRequests.List(ctx, p.owner, p.repo, opts)
	if err != nil {
		return nil, fmt.Errorf("list PRs: %w", err)
	}
	if len(prs) == 0 {
		return nil, ErrNotFound
	}
	return fromGitHub(prs[0]), nil
}

// fromGitHub converts a GitHub PR to our PullRequest type.
func fromGitHub(pr *github.PullRequest) *PullRequest {
	result := &PullRequest{
		ID:    pr.GetNumber(),
		URL:   pr.GetHTMLURL(),
		Title: pr.GetTitle(),
	}

	switch pr.GetState() {
	case "open":
		result.State = StateOpen
	case "closed":
		if pr.GetMerged() {
			result.State = StateMerged
		} else {
			result.State = StateClosed
		}
	}

	if pr.Head != nil {
		result.Head = pr.Head.GetRef()
	}
	if pr.Base != nil {
		result.Base = pr.Base.GetRef()
	}
	return result
}
