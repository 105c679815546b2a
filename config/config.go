package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	apperrors "github.com/randalmurphal/appforge/errors"
	"github.com/randalmurphal/appforge/pr"
)

// LocalConfigName is the optional config file looked up in the working directory.
const LocalConfigName = ".appforge"

// DefaultActor commits to the deploy branch when GITHUB_ACTOR is unset.
const DefaultActor = "automation-bot"

// Defaults for tunables.
var defaults = map[string]any{
	"registry_path":    "config/apps.yaml",
	"applications_dir": "applications",
	"template_app":     "test-one",
	"remote":           "origin",
	"infra_base":       "main",
	"pr_backend":       pr.BackendAPI,
	"enable_addons":    false,
	"log_format":       "console",
	"log_level":        "info",
	"github_host":      "github.com",
	"actor":            DefaultActor,
}

// envBindings maps config keys to the CI-provided environment variables.
var envBindings = map[string]string{
	"pr_number":            "PR_NUMBER",
	"actor":                "GITHUB_ACTOR",
	"head_ref":             "PR_HEAD_REF",
	"app_id":               "APP_ID",
	"app_key":              "APP_KEY",
	"installation_id":      "INSTALLATION_ID",
	"github_token":         "GITHUB_TOKEN",
	"github_api_url":       "GITHUB_API_URL",
	"jira_base_url":        "JIRA_BASE_URL",
	"jira_username":        "JIRA_USERNAME",
	"jira_token":           "JIRA_TOKEN",
	"notify_webhook_url":   "NOTIFY_WEBHOOK_URL",
	"notify_webhook_token": "NOTIFY_WEBHOOK_TOKEN",
}

// Config is the resolved run configuration.
type Config struct {
	// Identifiers of the run, normally given as flags.
	BaseBranch string `mapstructure:"base_branch"`
	HeadBranch string `mapstructure:"head_branch"`
	DeployRepo string `mapstructure:"deploy_repo"`
	InfraRepo  string `mapstructure:"infra_repo"`
	AddonsRepo string `mapstructure:"addons_repo"`

	// CI context.
	PRNumber string `mapstructure:"pr_number"`
	Actor    string `mapstructure:"actor"`
	HeadRef  string `mapstructure:"head_ref"`

	// GitHub App identity used for cross-repository writes.
	AppID          string `mapstructure:"app_id"`
	AppKey         string `mapstructure:"app_key"` // PEM contents or path
	InstallationID int64  `mapstructure:"installation_id"`

	// GitHubToken comments on the originating pull request.
	GitHubToken  string `mapstructure:"github_token"`
	GitHubHost   string `mapstructure:"github_host"`
	GitHubAPIURL string `mapstructure:"github_api_url"`

	JiraBaseURL  string `mapstructure:"jira_base_url"`
	JiraUsername string `mapstructure:"jira_username"`
	JiraToken    string `mapstructure:"jira_token"`

	NotifyWebhookURL   string `mapstructure:"notify_webhook_url"`
	NotifyWebhookToken string `mapstructure:"notify_webhook_token"`

	RegistryPath    string   `mapstructure:"registry_path"`
	ApplicationsDir string   `mapstructure:"applications_dir"`
	TemplateApp     string   `mapstructure:"template_app"`
	Remote          string   `mapstructure:"remote"`
	InfraBase       string   `mapstructure:"infra_base"`
	PRBackend       string   `mapstructure:"pr_backend"`
	RenderCommand   []string `mapstructure:"render_command"`
	EnableAddons    bool     `mapstructure:"enable_addons"`

	LogFormat string `mapstructure:"log_format"`
	LogLevel  string `mapstructure:"log_level"`
}

// NewViper returns a viper instance with defaults and environment bindings
// installed. Callers bind flags onto it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

// Load reads the optional config file and decodes the merged settings.
// Precedence: flags > environment > file > defaults. An explicit path must
// exist; otherwise .appforge.yaml in the working directory is used if present.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(LocalConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Actor == "" {
		cfg.Actor = DefaultActor
	}
	return &cfg, nil
}

// Validate checks what the propagate command needs before doing any work.
func (c *Config) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"base-branch", c.BaseBranch},
		{"head-branch", c.HeadBranch},
		{"deploy-repo", c.DeployRepo},
		{"infra-repo", c.InfraRepo},
		{"addons-repo", c.AddonsRepo},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, "--"+f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: required flags not set: %s", apperrors.ErrUsage, strings.Join(missing, ", "))
	}

	for _, repo := range []string{c.DeployRepo, c.InfraRepo, c.AddonsRepo} {
		if _, _, err := pr.ParseRepo(repo); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrUsage, err)
		}
	}

	switch c.PRBackend {
	case pr.BackendAPI, pr.BackendCLI:
	default:
		return fmt.Errorf("%w: pr_backend must be %q or %q, got %q", apperrors.ErrUsage, pr.BackendAPI, pr.BackendCLI, c.PRBackend)
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log_format must be console or json, got %q", apperrors.ErrUsage, c.LogFormat)
	}
	return nil
}

// PushRef is the branch the deploy commit is pushed to.
func (c *Config) PushRef() string {
	if c.HeadRef != "" {
		return c.HeadRef
	}
	return c.HeadBranch
}

// ActorIdentity returns the committer name and email for the deploy branch.
func (c *Config) ActorIdentity() (name, email string) {
	name = c.Actor
	if name == "" {
		name = DefaultActor
	}
	return name, name + "@users.noreply.github.com"
}

var pullRef = regexp.MustCompile(`^refs/pull/(\d+)/`)

// PullNumber parses the originating pull request number. It accepts a
// bare number or a refs/pull/N/merge ref. ok is false when unavailable.
func (c *Config) PullNumber() (n int, ok bool) {
	s := strings.TrimSpace(c.PRNumber)
	if m := pullRef.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// JiraEnabled reports whether issue-tracker notification is configured.
func (c *Config) JiraEnabled() bool {
	return c.JiraBaseURL != "" && c.JiraUsername != "" && c.JiraToken != ""
}

// CloneURL returns the HTTPS clone URL of repo on the configured host.
func (c *Config) CloneURL(repo string) string {
	host := c.GitHubHost
	if host == "" {
		host = "github.com"
	}
	return "https://" + host + "/" + repo + ".git"
}
