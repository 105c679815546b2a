package pr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// DefaultBase is the branch pull requests target when Options.Base is empty.
const DefaultBase = "main"

// State represents the state of a pull request.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
	StateMerged State = "merged"
)

// Provider creates and comments on pull requests in one repository.
type Provider interface {
	// CreatePR opens a pull request. Returns ErrExists if one is already
	// open for the head branch.
	CreatePR(ctx context.Context, opts Options) (*PullRequest, error)

	// AddComment adds a comment to a pull request.
	AddComment(ctx context.Context, id int, body string) error

	// FindOpenPR returns the open pull request from head into base.
	// Returns ErrNotFound if there is none.
	FindOpenPR(ctx context.Context, head, base string) (*PullRequest, error)
}

// Options configures pull request creation.
type Options struct {
	Title string // PR title (required)
	Body  string // PR description (markdown)
	Base  string // Target branch (default: "main")
	Head  string // Source branch (required)
	Draft bool   // Create as draft
}

func (o Options) base() string {
	if o.Base == "" {
		return DefaultBase
	}
	return o.Base
}

// PullRequest represents a pull request.
type PullRequest struct {
	ID    int    // PR number, 0 if unknown
	URL   string // Web URL
	Title string // PR title
	State State  // Current state
	Head  string // Source branch
	Base  string // Target branch

	// Raw is the unparsed creation output when no URL could be found in it.
	Raw string
}

// Reference returns the URL of the pull request, or the raw creation
// output when no URL was available.
func (p *PullRequest) Reference() string {
	if p.URL != "" {
		return p.URL
	}
	return p.Raw
}

// Builder helps construct PR options using a fluent interface.
type Builder struct {
	opts Options
}

// NewBuilder creates a new PR builder with the given title.
func NewBuilder(title string) *Builder {
	return &Builder{
		opts: Options{
			Title: title,
			Base:  DefaultBase,
		},
	}
}

// WithBody sets the PR body.
func (b *Builder) WithBody(body string) *Builder {
	b.opts.Body = body
	return b
}

// WithBase sets the target branch.
func (b *Builder) WithBase(base string) *Builder {
	if base != "" {
		b.opts.Base = base
	}
	return b
}

// WithHead sets the source branch.
func (b *Builder) WithHead(head string) *Builder {
	b.opts.Head = head
	return b
}

// AsDraft creates as a draft PR.
func (b *Builder) AsDraft() *Builder {
	b.opts.Draft = true
	return b
}

// Build returns the constructed PR options.
func (b *Builder) Build() Options {
	return b.opts
}

// ParseReference extracts the pull request reference from creation output:
// the first line starting with http:// or https://, trimmed. If no such line
// exists the whole output, trimmed, is returned with ok false.
func ParseReference(output string) (ref string, ok bool) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "https://") || strings.HasPrefix(line, "http://") {
			return line, true
		}
	}
	return strings.TrimSpace(output), false
}

// NumberFromURL returns the trailing pull request number of a URL such as
// https://github.com/acme/infra/pull/42, or 0.
func NumberFromURL(u string) int {
	u = strings.TrimRight(u, "/")
	i := strings.LastIndex(u, "/")
	if i < 0 || !strings.HasSuffix(u[:i], "/pull") {
		return 0
	}
	n, err := strconv.Atoi(u[i+1:])
	if err != nil {
		return 0
	}
	return n
}

// ParseRepo splits an "owner/name" identifier. Remote URLs are accepted too.
func ParseRepo(repo string) (owner, name string, err error) {
	if strings.Contains(repo, "://") || strings.HasPrefix(repo, "git@") {
		return ParseRepoFromURL(repo)
	}
	parts := strings.Split(strings.TrimSuffix(repo, ".git"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepo, repo)
	}
	return parts[0], parts[1], nil
}

// ParseRepoFromURL extracts owner and repo from a git remote URL.
func ParseRepoFromURL(remoteURL string) (owner, repo string, err error) {
	// Handle SSH URLs: git@github.com:owner/repo.git
	if strings.HasPrefix(remoteURL, "git@") {
		parts := strings.Split(remoteURL, ":")
		if len(parts) != 2 {
			return "", "", fmt.Errorf("%w: invalid SSH URL format", ErrInvalidRepo)
		}
		path := strings.TrimSuffix(parts[1], ".git")
		pathParts := strings.Split(path, "/")
		if len(pathParts) != 2 {
			return "", "", fmt.Errorf("%w: invalid repository path", ErrInvalidRepo)
		}
		return pathParts[0], pathParts[1], nil
	}

	// Handle HTTPS URLs: https://github.com/owner/repo.git
	remoteURL = strings.TrimPrefix(remoteURL, "https://")
	remoteURL = strings.TrimPrefix(remoteURL, "http://")
	remoteURL = strings.TrimSuffix(remoteURL, ".git")

	parts := strings.Split(remoteURL, "/")
	if len(parts) < 3 {
		return "", "", fmt.Errorf("%w: invalid URL format", ErrInvalidRepo)
	}

	// Last two parts are owner/repo
	return parts[len(parts)-2], parts[len(parts)-1], nil
}
