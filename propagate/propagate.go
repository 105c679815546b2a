package propagate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	nanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/randalmurphal/appforge/auth"
	"github.com/randalmurphal/appforge/git"
	"github.com/randalmurphal/appforge/notify"
	"github.com/randalmurphal/appforge/pr"
	"github.com/randalmurphal/appforge/registry"
)

// Identity used for commits in target clones.
const (
	BotName  = "github-actions[bot]"
	BotEmail = "github-actions[bot]@users.noreply.github.com"
)

// ProviderFactory returns a pull request provider for repo authenticated
// with token.
type ProviderFactory func(repo, token string) (pr.Provider, error)

// Options describes one run.
type Options struct {
	BaseBranch   string
	PushRef      string // head branch receiving the deploy commit
	DeployRepo   string
	PRNumber     int // originating pull request, 0 if unknown
	Targets      []Target
	RegistryPath string // relative to the working tree
	Remote       string

	// FetchDepth is passed to the base branch fetch; 0 fetches full history.
	FetchDepth int

	ActorName  string
	ActorEmail string

	// CloneURL maps owner/name to a clone URL.
	CloneURL func(repo string) string

	// TempDir is the parent for target clones. Defaults to os.TempDir.
	TempDir string
}

// Result summarizes a run.
type Result struct {
	RunID     string
	NewApps   []string
	Records   []Record
	Comment   string
	Commented bool
}

// Propagator runs the detect and propagate workflow over a working tree.
type Propagator struct {
	local     *git.Context
	opts      Options
	runner    git.CommandRunner
	base      registry.RevisionReader
	renderer  Renderer
	tokens    auth.TokenSource
	providers ProviderFactory
	commenter pr.Provider
	notifier  notify.Notifier
	namer     *git.BranchNamer
	logger    *zap.Logger

	runID string
	cred  *auth.Credential
}

// Option configures a Propagator.
type Option func(*Propagator)

// WithRunner sets the command runner used for target clones.
func WithRunner(runner git.CommandRunner) Option {
	return func(p *Propagator) { p.runner = runner }
}

// WithBaseReader overrides how the base registry is read. Defaults to the
// working tree's git context.
func WithBaseReader(r registry.RevisionReader) Option {
	return func(p *Propagator) { p.base = r }
}

// WithRenderer sets the scaffolding renderer.
func WithRenderer(r Renderer) Option {
	return func(p *Propagator) { p.renderer = r }
}

// WithTokenSource sets the source of the installation credential.
func WithTokenSource(ts auth.TokenSource) Option {
	return func(p *Propagator) { p.tokens = ts }
}

// WithProviderFactory sets how target pull request providers are built.
func WithProviderFactory(f ProviderFactory) Option {
	return func(p *Propagator) { p.providers = f }
}

// WithCommenter sets the provider used to comment on the originating
// pull request.
func WithCommenter(c pr.Provider) Option {
	return func(p *Propagator) { p.commenter = c }
}

// WithNotifier sets the event notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Propagator) { p.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Propagator) { p.logger = logger }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(p *Propagator) { p.runID = id }
}

// New creates a Propagator for the working tree behind local.
func New(local *git.Context, opts Options, options ...Option) *Propagator {
	if opts.RegistryPath == "" {
		opts.RegistryPath = registry.DefaultPath
	}
	if opts.Remote == "" {
		opts.Remote = "origin"
	}
	if opts.CloneURL == nil {
		opts.CloneURL = func(repo string) string { return "https://github.com/" + repo + ".git" }
	}

	p := &Propagator{
		local:    local,
		opts:     opts,
		base:     local,
		notifier: notify.NopNotifier{},
		namer:    git.DefaultBranchNamer(),
		logger:   zap.NewNop(),
	}
	for _, o := range options {
		o(p)
	}
	if p.runner == nil {
		p.runner = git.NewExecRunner()
	}
	if p.runID == "" {
		if id, err := nanoid.New(); err == nil {
			p.runID = id
		}
	}
	p.logger = p.logger.With(zap.String("run", p.runID))
	return p
}

// RunID returns the identifier carried in logs and events for this run.
func (p *Propagator) RunID() string {
	return p.runID
}

// Run executes the workflow. Detecting no new applications is a successful
// no-op. Fatal preconditions are returned wrapped around their sentinels
// (registry.ErrConfigMissing, render.ErrTemplateMissing,
// auth.ErrCredentialUnavailable).
func (p *Propagator) Run(ctx context.Context) (*Result, error) {
	result := &Result{RunID: p.runID}

	if err := p.validate(); err != nil {
		return result, err
	}

	p.emit(ctx, notify.NewEvent(notify.EventRunStarted, p.runID, "propagation started"))

	err := p.run(ctx, result)
	if err != nil {
		ev := notify.NewEvent(notify.EventRunFailed, p.runID, err.Error())
		ev.Severity = notify.SeverityError
		p.emit(ctx, ev)
		return result, err
	}

	ev := notify.NewEvent(notify.EventRunCompleted, p.runID, fmt.Sprintf("%d new app(s), %d pull request(s)", len(result.NewApps), len(result.Records)))
	p.emit(ctx, ev)
	return result, nil
}

func (p *Propagator) validate() error {
	switch {
	case p.local == nil:
		return errors.New("propagate: working tree not configured")
	case p.renderer == nil:
		return errors.New("propagate: renderer not configured")
	case p.tokens == nil && len(p.opts.Targets) > 0:
		return errors.New("propagate: token source not configured")
	case p.providers == nil && len(p.opts.Targets) > 0:
		return errors.New("propagate: provider factory not configured")
	}
	return nil
}

func (p *Propagator) run(ctx context.Context, result *Result) error {
	apps, err := p.detect()
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		p.logger.Info("no new apps added compared to base branch", zap.String("base", p.opts.BaseBranch))
		return nil
	}

	for _, app := range apps {
		result.NewApps = append(result.NewApps, app.Name)
	}
	p.logger.Info("new apps detected", zap.Strings("apps", result.NewApps))

	if err := p.local.SetIdentity(p.opts.ActorName, p.opts.ActorEmail); err != nil {
		return err
	}

	for _, app := range apps {
		records, err := p.processApp(ctx, app)
		result.Records = append(result.Records, records...)
		if err != nil {
			return fmt.Errorf("app %s: %w", app.Name, err)
		}
	}

	result.Comment = SummaryComment(result.NewApps, result.Records)
	commented, err := p.comment(ctx, result.Comment)
	result.Commented = commented
	return err
}

// detect loads both registry snapshots and returns the new applications in
// head order.
func (p *Propagator) detect() ([]registry.Application, error) {
	head, err := registry.Load(filepath.Join(p.local.RepoPath(), p.opts.RegistryPath))
	if err != nil {
		return nil, err
	}

	return registry.NewApplications(p.loadBase(), head), nil
}

// loadBase reads the registry at the base branch. Any failure yields an
// empty registry.
func (p *Propagator) loadBase() *registry.Registry {
	log := p.logger.With(zap.String("base", p.opts.BaseBranch))

	if err := p.local.Fetch(p.opts.Remote, p.opts.BaseBranch, p.opts.FetchDepth); err != nil {
		log.Warn("fetch base branch failed, treating base registry as empty", zap.Error(err))
		return registry.Empty()
	}

	rev := p.opts.Remote + "/" + p.opts.BaseBranch
	base, err := registry.LoadRevision(p.base, rev, p.opts.RegistryPath)
	if err != nil {
		log.Warn("base registry unavailable, treating as empty", zap.Error(err))
		return registry.Empty()
	}
	return base
}

// processApp renders app locally, pushes it to the head ref, then
// propagates it to every target.
func (p *Propagator) processApp(ctx context.Context, app registry.Application) ([]Record, error) {
	log := p.logger.With(zap.String("app", app.Name), zap.String("issue", app.IssueRef), zap.Strings("envs", app.Envs))
	log.Info("processing app")

	started := notify.NewEvent(notify.EventAppStarted, p.runID, "processing "+app.Name)
	started.App, started.IssueRef = app.Name, app.IssueRef
	p.emit(ctx, started)

	if err := p.renderer.Render(ctx, p.local.RepoPath(), app.Name, app.Envs); err != nil {
		return nil, err
	}
	if err := p.commit(p.local, LocalCommitMessage(app.Name), log); err != nil {
		return nil, err
	}
	refspec := "HEAD:" + p.opts.PushRef
	if err := p.local.Push(p.opts.Remote, refspec, false); err != nil {
		return nil, err
	}
	log.Info("pushed changes to deploy branch", zap.String("branch", p.opts.PushRef))

	var records []Record
	for _, target := range p.opts.Targets {
		rec, err := p.propagate(ctx, app, target)
		if err != nil {
			return records, fmt.Errorf("%s %s: %w", target.Kind, target.Repo, err)
		}
		records = append(records, rec)
	}

	done := notify.NewEvent(notify.EventAppCompleted, p.runID, "processed "+app.Name)
	done.App, done.IssueRef = app.Name, app.IssueRef
	p.emit(ctx, done)
	return records, nil
}

// propagate clones target, renders app on its configure branch, pushes and
// opens a pull request. The clone is removed on every return path.
func (p *Propagator) propagate(ctx context.Context, app registry.Application, target Target) (Record, error) {
	branch := p.namer.ForApp(app.IssueRef, app.Name)
	log := p.logger.With(zap.String("app", app.Name), zap.String("repo", target.Repo), zap.String("branch", branch))

	cred, err := p.credential(ctx)
	if err != nil {
		return Record{}, err
	}

	dir, err := os.MkdirTemp(p.opts.TempDir, "appforge-"+string(target.Kind)+"-")
	if err != nil {
		return Record{}, fmt.Errorf("create clone directory: %w", err)
	}
	defer os.RemoveAll(dir)

	clone, err := git.Clone(p.runner, p.opts.CloneURL(target.Repo), dir, git.CloneOptions{Token: cred.Token})
	if err != nil {
		return Record{}, err
	}
	if err := clone.SetIdentity(BotName, BotEmail); err != nil {
		return Record{}, err
	}
	if err := p.checkoutBranch(clone, branch, log); err != nil {
		return Record{}, err
	}

	if err := p.renderer.Render(ctx, dir, app.Name, app.Envs); err != nil {
		return Record{}, err
	}
	if err := p.commit(clone, target.CommitMessage(app), log); err != nil {
		return Record{}, err
	}
	if err := clone.Push("origin", branch, true); err != nil {
		return Record{}, err
	}

	provider, err := p.providers(target.Repo, cred.Token)
	if err != nil {
		return Record{}, err
	}
	opts := target.PullRequest(app, branch, p.opts.PRNumber)
	created, err := p.openPR(ctx, provider, opts, log)
	if errors.Is(err, pr.ErrNoChanges) {
		// The branch matches base, typically because an earlier pull request
		// for this application was merged and its branch deleted.
		ref := fmt.Sprintf("no changes between %s and %s", opts.Base, opts.Head)
		log.Warn("no changes against base branch, recording reference",
			zap.String("base", opts.Base),
			zap.String("head", opts.Head),
		)
		return Record{Repo: target.Repo, Ref: ref}, nil
	}
	if err != nil {
		return Record{}, err
	}

	rec := Record{Repo: target.Repo, Ref: created.Reference()}
	log.Info("pull request ready", zap.String("pr", rec.Ref))

	ev := notify.NewEvent(notify.EventPRCreated, p.runID, opts.Title)
	ev.App, ev.IssueRef, ev.Repo, ev.URL = app.Name, app.IssueRef, target.Repo, rec.Ref
	p.emit(ctx, ev)
	return rec, nil
}

// checkoutBranch continues the configure branch when a previous run
// already pushed it, and creates it from the default branch otherwise.
func (p *Propagator) checkoutBranch(clone *git.Context, branch string, log *zap.Logger) error {
	if clone.HasRef("refs/remotes/origin/" + branch) {
		log.Warn("branch already exists on remote, continuing on it")
		return clone.CheckoutTracking("origin", branch)
	}
	return clone.CheckoutNew(branch)
}

// openPR creates the pull request, falling back to the open one for the
// same head when it already exists.
func (p *Propagator) openPR(ctx context.Context, provider pr.Provider, opts pr.Options, log *zap.Logger) (*pr.PullRequest, error) {
	created, err := provider.CreatePR(ctx, opts)
	if err == nil {
		if created.URL == "" {
			log.Warn("could not parse pull request URL, recording raw output", zap.String("output", created.Raw))
		}
		return created, nil
	}
	if !errors.Is(err, pr.ErrExists) {
		return nil, err
	}

	log.Warn("pull request already exists for branch, reusing it")
	existing, findErr := provider.FindOpenPR(ctx, opts.Head, opts.Base)
	if findErr != nil {
		return nil, fmt.Errorf("%w (lookup: %v)", err, findErr)
	}
	return existing, nil
}

// commit stages and commits everything in gc. An empty commit is logged
// and tolerated.
func (p *Propagator) commit(gc *git.Context, message string, log *zap.Logger) error {
	err := gc.CommitAll(message)
	if errors.Is(err, git.ErrNothingToCommit) {
		log.Warn("no changes to commit", zap.String("dir", gc.RepoPath()))
		return nil
	}
	return err
}

// credential obtains the installation token once per run.
func (p *Propagator) credential(ctx context.Context) (*auth.Credential, error) {
	if p.cred != nil {
		return p.cred, nil
	}
	cred, err := p.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("obtained installation credential", zap.Stringer("credential", cred))
	p.cred = cred
	return cred, nil
}

// comment posts the summary on the originating pull request. A missing
// pull request number skips the comment without failing.
func (p *Propagator) comment(ctx context.Context, body string) (bool, error) {
	if p.opts.PRNumber <= 0 {
		p.logger.Warn("PR number not available; cannot post comment on deploy PR")
		ev := notify.NewEvent(notify.EventCommentSkipped, p.runID, "PR number not available")
		ev.Severity = notify.SeverityWarning
		p.emit(ctx, ev)
		return false, nil
	}
	if p.commenter == nil {
		return false, fmt.Errorf("comment on %s#%d: no comment provider configured", p.opts.DeployRepo, p.opts.PRNumber)
	}

	if err := p.commenter.AddComment(ctx, p.opts.PRNumber, body); err != nil {
		return false, fmt.Errorf("comment on %s#%d: %w", p.opts.DeployRepo, p.opts.PRNumber, err)
	}
	p.logger.Info("posted comment to deploy PR", zap.String("repo", p.opts.DeployRepo), zap.Int("pr", p.opts.PRNumber))

	ev := notify.NewEvent(notify.EventCommentPosted, p.runID, "summary comment posted")
	ev.Repo = p.opts.DeployRepo
	p.emit(ctx, ev)
	return true, nil
}

func (p *Propagator) emit(ctx context.Context, ev notify.Event) {
	if err := p.notifier.Notify(ctx, ev); err != nil {
		p.logger.Debug("notification failed", zap.String("event", string(ev.Type)), zap.Error(err))
	}
}
