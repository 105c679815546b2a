package propagate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/appforge/registry"
)

func TestTargetsFor(t *testing.T) {
	targets := TargetsFor("acme/infra", "acme/addons", "", false)
	assert.Equal(t, []Target{{Kind: TargetInfra, Repo: "acme/infra", Base: "main"}}, targets)

	targets = TargetsFor("acme/infra", "acme/addons", "trunk", true)
	assert.Equal(t, []Target{
		{Kind: TargetInfra, Repo: "acme/infra", Base: "trunk"},
		{Kind: TargetAddons, Repo: "acme/addons", Base: "trunk"},
	}, targets)
}

func TestTarget_Messages(t *testing.T) {
	app := registry.Application{Name: "billing-svc", IssueRef: "OPS-12", Envs: []string{"dev", "staging"}}
	branch := "new_app/OPS-12/configure-billing-svc"

	tests := []struct {
		kind   TargetKind
		commit string
		title  string
		body   string
	}{
		{
			kind:   TargetInfra,
			commit: "feat: add app billing-svc with envs (dev staging)",
			title:  "Configure billing-svc (OPS-12)",
			body:   "Automated PR to configure billing-svc for envs: dev staging",
		},
		{
			kind:   TargetAddons,
			commit: "feat(addons): configure billing-svc (dev staging)",
			title:  "Addons: configure billing-svc (OPS-12)",
			body:   "Automated PR to configure addons for billing-svc. See deploy PR #42",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			target := Target{Kind: tt.kind, Repo: "acme/x", Base: "main"}
			assert.Equal(t, tt.commit, target.CommitMessage(app))

			opts := target.PullRequest(app, branch, 42)
			assert.Equal(t, tt.title, opts.Title)
			assert.Equal(t, tt.body, opts.Body)
			assert.Equal(t, branch, opts.Head)
			assert.Equal(t, "main", opts.Base)
		})
	}
}

func TestTarget_AddonsBodyWithoutDeployPR(t *testing.T) {
	app := registry.Application{Name: "a", IssueRef: registry.NoIssueRef}
	opts := Target{Kind: TargetAddons}.PullRequest(app, "b", 0)
	assert.Equal(t, "Automated PR to configure addons for a.", opts.Body)
}

func TestTarget_NoEnvs(t *testing.T) {
	app := registry.Application{Name: "sample-app", IssueRef: registry.NoIssueRef}
	target := Target{Kind: TargetInfra, Base: "main"}

	assert.Equal(t, "feat: add app sample-app with envs ()", target.CommitMessage(app))
	assert.Equal(t, "Configure sample-app (no-jira)", target.PullRequest(app, "b", 0).Title)
}

func TestLocalCommitMessage(t *testing.T) {
	assert.Equal(t, "chore: update app config for billing-svc", LocalCommitMessage("billing-svc"))
}
