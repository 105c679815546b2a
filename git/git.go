package git

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Context manages git operations for one working tree.
type Context struct {
	repoPath string        // Path to the working tree
	runner   CommandRunner // Command runner (defaults to ExecRunner)
}

// Option configures Context.
type Option func(*Context)

// WithRunner sets a custom command runner for git operations.
func WithRunner(runner CommandRunner) Option {
	return func(g *Context) {
		g.runner = runner
	}
}

// NewContext creates a git context for the working tree at repoPath.
// It validates that the path is a git repository.
func NewContext(repoPath string, opts ...Option) (*Context, error) {
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	g := &Context{
		repoPath: absPath,
		runner:   NewExecRunner(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if _, err := g.runGit("rev-parse", "--git-dir"); err != nil {
		return nil, ErrNotGitRepo
	}
	return g, nil
}

// RepoPath returns the path to the working tree.
func (g *Context) RepoPath() string {
	return g.repoPath
}

// CloneOptions configures Clone.
type CloneOptions struct {
	// Token authenticates HTTPS clone and later pushes as x-access-token.
	// It is sent as an extra HTTP header, never embedded in the remote URL.
	Token string

	// Branch limits the clone to one branch when set.
	Branch string

	// Depth makes a shallow clone when positive.
	Depth int
}

// Clone clones url into dir and returns a Context for the new working tree.
func Clone(runner CommandRunner, url, dir string, opts CloneOptions) (*Context, error) {
	if runner == nil {
		runner = NewExecRunner()
	}

	var args []string
	header := ""
	if opts.Token != "" {
		header = AuthHeader(opts.Token)
		if r, ok := runner.(Redactor); ok {
			r.AddRedaction(header)
			r.AddRedaction(opts.Token)
		}
		args = append(args, "-c", "http.extraheader="+header)
	}
	args = append(args, "clone")
	if opts.Branch != "" {
		args = append(args, "--branch", opts.Branch, "--single-branch")
	}
	if opts.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(opts.Depth))
	}
	args = append(args, url, dir)

	if _, err := runner.Run("", "git", args...); err != nil {
		return nil, &Error{Op: "clone", Err: err}
	}

	g := &Context{repoPath: dir, runner: runner}
	if header != "" {
		if err := g.SetConfig("http.extraheader", header); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AuthHeader builds the HTTP authorization header used for token auth.
func AuthHeader(token string) string {
	creds := base64.StdEncoding.EncodeToString([]byte("x-access-token:" + token))
	return "AUTHORIZATION: basic " + creds
}

// SetConfig sets a repository-local config value.
func (g *Context) SetConfig(key, value string) error {
	if _, err := g.runGit("config", key, value); err != nil {
		return &Error{Op: "set config " + key, Err: err}
	}
	return nil
}

// SetIdentity sets the committer name and email for this repository.
func (g *Context) SetIdentity(name, email string) error {
	if err := g.SetConfig("user.name", name); err != nil {
		return err
	}
	return g.SetConfig("user.email", email)
}

// Checkout switches to the specified ref.
func (g *Context) Checkout(ref string) error {
	if _, err := g.runGit("checkout", ref); err != nil {
		return &Error{Op: "checkout", Err: err}
	}
	return nil
}

// HasRef reports whether ref resolves to a commit.
func (g *Context) HasRef(ref string) bool {
	_, err := g.runGit("rev-parse", "--verify", "--quiet", ref+"^{commit}")
	return err == nil
}

// CheckoutTracking creates branch name from remote/name and checks it out
// with upstream tracking.
func (g *Context) CheckoutTracking(remote, name string) error {
	if _, err := g.runGit("checkout", "-b", name, "--track", remote+"/"+name); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return ErrBranchExists
		}
		return &Error{Op: "checkout tracking", Err: err}
	}
	return nil
}

// CreateBranch creates a new branch at HEAD.
func (g *Context) CreateBranch(name string) error {
	if _, err := g.runGit("branch", name); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return ErrBranchExists
		}
		return &Error{Op: "create branch", Err: err}
	}
	return nil
}

// CheckoutNew creates and checks out a new branch at the current HEAD.
func (g *Context) CheckoutNew(name string) error {
	if err := g.CreateBranch(name); err != nil {
		return err
	}
	return g.Checkout(name)
}

// Fetch fetches ref from remote. A positive depth makes the fetch shallow.
func (g *Context) Fetch(remote, ref string, depth int) error {
	args := []string{"fetch", remote}
	if ref != "" {
		args = append(args, ref)
	}
	if depth > 0 {
		args = append(args, "--depth="+strconv.Itoa(depth))
	}
	if _, err := g.runGit(args...); err != nil {
		return &Error{Op: "fetch", Err: err}
	}
	return nil
}

// ReadFileAt returns the contents of path as of rev (git show rev:path).
func (g *Context) ReadFileAt(rev, path string) ([]byte, error) {
	out, err := g.runGit("show", rev+":"+filepath.ToSlash(path))
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "does not exist in"), strings.Contains(msg, "exists on disk, but not in"):
			return nil, fmt.Errorf("%w: %s:%s", ErrPathNotFound, rev, path)
		case strings.Contains(msg, "invalid object name"), strings.Contains(msg, "unknown revision"):
			return nil, fmt.Errorf("%w: %s", ErrRevisionNotFound, rev)
		}
		return nil, &Error{Op: "show", Err: err}
	}
	return []byte(out), nil
}

// StageAll stages all changes (git add -A).
func (g *Context) StageAll() error {
	if _, err := g.runGit("add", "-A"); err != nil {
		return &Error{Op: "stage all", Err: err}
	}
	return nil
}

// Commit creates a commit with the given message.
// Returns ErrNothingToCommit if there are no staged changes.
func (g *Context) Commit(message string) error {
	output, err := g.runGit("commit", "-m", message)
	if err != nil {
		if strings.Contains(output, "nothing to commit") ||
			strings.Contains(err.Error(), "nothing to commit") ||
			strings.Contains(err.Error(), "no changes added to commit") {
			return ErrNothingToCommit
		}
		return &Error{Op: "commit", Output: output, Err: err}
	}
	return nil
}

// CommitAll stages everything and commits.
// Returns ErrNothingToCommit if the tree has no changes.
func (g *Context) CommitAll(message string) error {
	if err := g.StageAll(); err != nil {
		return err
	}
	return g.Commit(message)
}

// Push pushes refspec to remote.
// If setUpstream is true, uses -u to set upstream tracking.
func (g *Context) Push(remote, refspec string, setUpstream bool) error {
	args := []string{"push"}
	if setUpstream {
		args = append(args, "-u")
	}
	args = append(args, remote, refspec)

	if _, err := g.runGit(args...); err != nil {
		return &Error{Op: "push", Err: err}
	}
	return nil
}

// runGit executes a git command in the working tree and returns stdout.
func (g *Context) runGit(args ...string) (string, error) {
	return g.runner.Run(g.repoPath, "git", args...)
}
