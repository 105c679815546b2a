package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/randalmurphal/appforge/auth"
	"github.com/randalmurphal/appforge/config"
	"github.com/randalmurphal/appforge/git"
	"github.com/randalmurphal/appforge/notify"
	"github.com/randalmurphal/appforge/pr"
	"github.com/randalmurphal/appforge/propagate"
)

func (c *cli) propagateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propagate",
		Short: "Detect new applications and open pull requests for them",
		Long: `Compares the registry on the base branch with the current checkout. For
each new application it renders the application into the checkout and pushes
to the head branch, then renders it into a fresh clone of the infra
repository (and the addons repository when enabled) and opens a pull
request there. A summary comment is posted on the originating pull request
when PR_NUMBER is set.

Exits 0 when there is nothing to do.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runPropagate(cmd)
		},
	}

	flags := cmd.Flags()
	flags.String("base-branch", "", "branch the registry is compared against (required)")
	flags.String("head-branch", "", "branch of the originating pull request (required)")
	flags.String("deploy-repo", "", "owner/name of the deploy repository (required)")
	flags.String("infra-repo", "", "owner/name of the infra repository (required)")
	flags.String("addons-repo", "", "owner/name of the addons repository (required)")
	flags.String("registry-path", "", "registry file relative to the checkout")
	flags.String("pr-backend", "", "pull request backend: api or gh")
	flags.Bool("enable-addons", false, "also propagate to the addons repository")
	flags.StringSlice("render-command", nil, "command used to render an application (default: this binary's render)")
	c.bind(flags, map[string]string{
		"base-branch":    "base_branch",
		"head-branch":    "head_branch",
		"deploy-repo":    "deploy_repo",
		"infra-repo":     "infra_repo",
		"addons-repo":    "addons_repo",
		"registry-path":  "registry_path",
		"pr-backend":     "pr_backend",
		"enable-addons":  "enable_addons",
		"render-command": "render_command",
	})
	return cmd
}

func (c *cli) runPropagate(cmd *cobra.Command) error {
	cfg := c.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}
	runner := &git.ExecRunner{Logger: c.logger}
	local, err := git.NewContext(wd, git.WithRunner(runner))
	if err != nil {
		return err
	}

	tokens, err := tokenSource(cfg)
	if err != nil {
		return err
	}
	renderer, err := c.renderer(runner)
	if err != nil {
		return err
	}

	prCfg := pr.Config{BaseURL: cfg.GitHubAPIURL, Host: cfg.GitHubHost, Logger: c.logger}
	factory := func(repo, token string) (pr.Provider, error) {
		return pr.New(cfg.PRBackend, repo, token, prCfg)
	}

	var commenter pr.Provider
	if cfg.GitHubToken != "" {
		commenter, err = pr.New(cfg.PRBackend, cfg.DeployRepo, cfg.GitHubToken, prCfg)
		if err != nil {
			return err
		}
	}

	prNumber, _ := cfg.PullNumber()
	actor, email := cfg.ActorIdentity()

	p := propagate.New(local, propagate.Options{
		BaseBranch:   cfg.BaseBranch,
		PushRef:      cfg.PushRef(),
		DeployRepo:   cfg.DeployRepo,
		PRNumber:     prNumber,
		Targets:      propagate.TargetsFor(cfg.InfraRepo, cfg.AddonsRepo, cfg.InfraBase, cfg.EnableAddons),
		RegistryPath: cfg.RegistryPath,
		Remote:       cfg.Remote,
		FetchDepth:   1,
		ActorName:    actor,
		ActorEmail:   email,
		CloneURL:     cfg.CloneURL,
	},
		propagate.WithRunner(runner),
		propagate.WithBaseReader(baseReader(local, c.logger)),
		propagate.WithRenderer(renderer),
		propagate.WithTokenSource(tokens),
		propagate.WithProviderFactory(factory),
		propagate.WithCommenter(commenter),
		propagate.WithNotifier(c.notifier(cfg)),
		propagate.WithLogger(c.logger),
	)

	result, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}
	c.logger.Info("propagation finished",
		zap.Strings("apps", result.NewApps),
		zap.Int("pull_requests", len(result.Records)),
		zap.Bool("commented", result.Commented),
	)
	return nil
}

// tokenSource builds the installation credential source. Missing App
// settings are reported when a credential is first needed, so runs with
// no new applications succeed without them.
func tokenSource(cfg *config.Config) (auth.TokenSource, error) {
	if cfg.AppID == "" || cfg.AppKey == "" || cfg.InstallationID == 0 {
		return auth.StaticSource(""), nil
	}
	key, err := auth.LoadPrivateKey(cfg.AppKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrCredentialUnavailable, err)
	}
	return &auth.InstallationTokenSource{
		AppID:          cfg.AppID,
		InstallationID: cfg.InstallationID,
		Key:            key,
		BaseURL:        cfg.GitHubAPIURL,
	}, nil
}

// renderer runs the configured render command, or this binary's render
// subcommand.
func (c *cli) renderer(runner git.CommandRunner) (*propagate.CommandRenderer, error) {
	command := c.cfg.RenderCommand
	if len(command) == 0 {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate executable: %w", err)
		}
		// The child runs inside each clone, so forward the layout settings
		// rather than relying on its own config discovery.
		command = []string{exe, "render",
			"--applications-dir", c.cfg.ApplicationsDir,
			"--template", c.cfg.TemplateApp,
		}
	}
	return propagate.NewCommandRenderer(runner, command...), nil
}

// baseReader prefers reading revisions in-process and falls back to git show.
func baseReader(local *git.Context, logger *zap.Logger) revisionReaderFunc {
	return func(rev, path string) ([]byte, error) {
		objects, err := git.OpenObjectReader(local.RepoPath())
		if err != nil {
			logger.Debug("object reader unavailable, using git show", zap.Error(err))
			return local.ReadFileAt(rev, path)
		}
		return objects.ReadFileAt(rev, path)
	}
}

type revisionReaderFunc func(rev, path string) ([]byte, error)

func (f revisionReaderFunc) ReadFileAt(rev, path string) ([]byte, error) {
	return f(rev, path)
}

// notifier fans events out to the log and, when configured, Jira and a
// webhook.
func (c *cli) notifier(cfg *config.Config) notify.Notifier {
	notifiers := []notify.Notifier{notify.NewLogNotifier(c.logger)}

	if cfg.JiraEnabled() {
		jn, err := notify.NewJiraNotifier(cfg.JiraBaseURL, cfg.JiraUsername, cfg.JiraToken, c.logger)
		if err != nil {
			c.logger.Warn("jira notifications disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, jn)
		}
	}
	if cfg.NotifyWebhookURL != "" {
		var opts []notify.WebhookOption
		if cfg.NotifyWebhookToken != "" {
			opts = append(opts, notify.WithWebhookToken(cfg.NotifyWebhookToken))
		}
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.NotifyWebhookURL, opts...))
	}
	return notify.NewMultiNotifier(c.logger, notifiers...)
}
