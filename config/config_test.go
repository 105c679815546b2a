package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/randalmurphal/appforge/errors"
	"github.com/randalmurphal/appforge/pr"
)

func validConfig() *Config {
	return &Config{
		BaseBranch: "main",
		HeadBranch: "feature/add-billing",
		DeployRepo: "acme/deploy",
		InfraRepo:  "acme/infra",
		AddonsRepo: "acme/addons",
		PRBackend:  pr.BackendAPI,
		LogFormat:  "console",
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GITHUB_ACTOR", "")

	cfg, err := Load(NewViper(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	checks := map[string][2]string{
		"registry_path":    {cfg.RegistryPath, "config/apps.yaml"},
		"applications_dir": {cfg.ApplicationsDir, "applications"},
		"template_app":     {cfg.TemplateApp, "test-one"},
		"remote":           {cfg.Remote, "origin"},
		"infra_base":       {cfg.InfraBase, "main"},
		"pr_backend":       {cfg.PRBackend, pr.BackendAPI},
		"log_format":       {cfg.LogFormat, "console"},
		"github_host":      {cfg.GitHubHost, "github.com"},
		"actor":            {cfg.Actor, DefaultActor},
	}
	for key, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", key, c[0], c[1])
		}
	}
	if cfg.EnableAddons {
		t.Error("EnableAddons should default to false")
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PR_NUMBER", "42")
	t.Setenv("GITHUB_ACTOR", "octocat")
	t.Setenv("PR_HEAD_REF", "feature/x")
	t.Setenv("APP_ID", "12345")
	t.Setenv("INSTALLATION_ID", "678")
	t.Setenv("GITHUB_TOKEN", "ghs_token")
	t.Setenv("JIRA_BASE_URL", "https://jira.example.com")
	t.Setenv("NOTIFY_WEBHOOK_URL", "https://hooks.example.com/appforge")
	t.Setenv("NOTIFY_WEBHOOK_TOKEN", "hook-token")

	cfg, err := Load(NewViper(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PRNumber != "42" {
		t.Errorf("PRNumber = %q, want 42", cfg.PRNumber)
	}
	if cfg.Actor != "octocat" {
		t.Errorf("Actor = %q, want octocat", cfg.Actor)
	}
	if cfg.HeadRef != "feature/x" {
		t.Errorf("HeadRef = %q", cfg.HeadRef)
	}
	if cfg.AppID != "12345" {
		t.Errorf("AppID = %q", cfg.AppID)
	}
	if cfg.InstallationID != 678 {
		t.Errorf("InstallationID = %d, want 678", cfg.InstallationID)
	}
	if cfg.GitHubToken != "ghs_token" {
		t.Errorf("GitHubToken = %q", cfg.GitHubToken)
	}
	if cfg.JiraBaseURL != "https://jira.example.com" {
		t.Errorf("JiraBaseURL = %q", cfg.JiraBaseURL)
	}
	if cfg.NotifyWebhookURL != "https://hooks.example.com/appforge" || cfg.NotifyWebhookToken != "hook-token" {
		t.Errorf("webhook = %q token %q", cfg.NotifyWebhookURL, cfg.NotifyWebhookToken)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := "template_app: base-svc\nenable_addons: true\nrender_command: [python3, scripts/new_app.py]\n"
	if err := os.WriteFile(filepath.Join(dir, ".appforge.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v := NewViper()
	cfg, err := Load(v, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TemplateApp != "base-svc" {
		t.Errorf("TemplateApp = %q, want base-svc", cfg.TemplateApp)
	}
	if !cfg.EnableAddons {
		t.Error("EnableAddons = false, want true")
	}
	want := []string{"python3", "scripts/new_app.py"}
	if len(cfg.RenderCommand) != len(want) {
		t.Fatalf("RenderCommand = %v, want %v", cfg.RenderCommand, want)
	}
	for i := range want {
		if cfg.RenderCommand[i] != want[i] {
			t.Errorf("RenderCommand[%d] = %q, want %q", i, cfg.RenderCommand[i], want[i])
		}
	}
	if got := SourceOf(v, "template_app", false); got != SourceFile {
		t.Errorf("SourceOf(template_app) = %q, want %q", got, SourceFile)
	}
	if got := SourceOf(v, "remote", false); got != SourceDefault {
		t.Errorf("SourceOf(remote) = %q, want %q", got, SourceDefault)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("actor: file-actor\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GITHUB_ACTOR", "env-actor")

	v := NewViper()
	cfg, err := Load(v, path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Actor != "env-actor" {
		t.Errorf("Actor = %q, want env-actor", cfg.Actor)
	}
	if got := SourceOf(v, "actor", false); got != SourceEnv {
		t.Errorf("SourceOf(actor) = %q, want %q", got, SourceEnv)
	}
	if got := SourceOf(v, "actor", true); got != SourceFlag {
		t.Errorf("SourceOf(actor, flag) = %q, want %q", got, SourceFlag)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_FlagOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GITHUB_ACTOR", "env-actor")

	v := NewViper()
	v.Set("actor", "flag-actor")
	v.Set("base_branch", "release")

	cfg, err := Load(v, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Actor != "flag-actor" {
		t.Errorf("Actor = %q, want flag-actor", cfg.Actor)
	}
	if cfg.BaseBranch != "release" {
		t.Errorf("BaseBranch = %q, want release", cfg.BaseBranch)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing base", func(c *Config) { c.BaseBranch = "" }, true},
		{"missing addons repo", func(c *Config) { c.AddonsRepo = " " }, true},
		{"bad repo", func(c *Config) { c.InfraRepo = "not-a-repo" }, true},
		{"bad backend", func(c *Config) { c.PRBackend = "gitlab" }, true},
		{"cli backend", func(c *Config) { c.PRBackend = pr.BackendCLI }, false},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"json log format", func(c *Config) { c.LogFormat = "json" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperrors.ErrUsage) {
				t.Errorf("Validate() error should wrap ErrUsage, got %v", err)
			}
		})
	}
}

func TestPushRef(t *testing.T) {
	cfg := validConfig()
	if got := cfg.PushRef(); got != "feature/add-billing" {
		t.Errorf("PushRef() = %q, want head branch", got)
	}
	cfg.HeadRef = "feature/override"
	if got := cfg.PushRef(); got != "feature/override" {
		t.Errorf("PushRef() = %q, want head ref", got)
	}
}

func TestPullNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"42", 42, true},
		{" 7 ", 7, true},
		{"refs/pull/12/merge", 12, true},
		{"", 0, false},
		{"abc", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cfg := &Config{PRNumber: tt.in}
			got, ok := cfg.PullNumber()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("PullNumber(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestActorIdentity(t *testing.T) {
	name, email := (&Config{Actor: "octocat"}).ActorIdentity()
	if name != "octocat" || email != "octocat@users.noreply.github.com" {
		t.Errorf("ActorIdentity() = %q, %q", name, email)
	}
	name, _ = (&Config{}).ActorIdentity()
	if name != DefaultActor {
		t.Errorf("empty actor = %q, want %q", name, DefaultActor)
	}
}

func TestJiraEnabled(t *testing.T) {
	cfg := &Config{JiraBaseURL: "https://jira", JiraUsername: "bot"}
	if cfg.JiraEnabled() {
		t.Error("JiraEnabled() without token should be false")
	}
	cfg.JiraToken = "tok"
	if !cfg.JiraEnabled() {
		t.Error("JiraEnabled() should be true")
	}
}

func TestCloneURL(t *testing.T) {
	cfg := &Config{GitHubHost: "ghe.example.com"}
	if got := cfg.CloneURL("acme/infra"); got != "https://ghe.example.com/acme/infra.git" {
		t.Errorf("CloneURL() = %q", got)
	}
	if got := (&Config{}).CloneURL("acme/infra"); got != "https://github.com/acme/infra.git" {
		t.Errorf("CloneURL() default = %q", got)
	}
}
