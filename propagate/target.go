package propagate

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/appforge/git"
	"github.com/randalmurphal/appforge/pr"
	"github.com/randalmurphal/appforge/registry"
)

// TargetKind names a dependent repository role.
type TargetKind string

// Target kinds.
const (
	TargetInfra  TargetKind = "infra"
	TargetAddons TargetKind = "addons"
)

// Target is a repository that receives a pull request per new application.
type Target struct {
	Kind TargetKind
	Repo string // owner/name
	Base string // branch the pull request targets
}

// TargetsFor returns the infra target, followed by the addons target when
// addons is true.
func TargetsFor(infraRepo, addonsRepo, base string, addons bool) []Target {
	if base == "" {
		base = pr.DefaultBase
	}
	targets := []Target{{Kind: TargetInfra, Repo: infraRepo, Base: base}}
	if addons {
		targets = append(targets, Target{Kind: TargetAddons, Repo: addonsRepo, Base: base})
	}
	return targets
}

// CommitMessage is the commit made in the target clone.
func (t Target) CommitMessage(app registry.Application) string {
	envs := joinEnvs(app.Envs)
	switch t.Kind {
	case TargetAddons:
		return git.NewCommitMessage(git.CommitTypeFeat, fmt.Sprintf("configure %s (%s)", app.Name, envs)).
			WithScope("addons").String()
	default:
		return git.NewCommitMessage(git.CommitTypeFeat, fmt.Sprintf("add app %s with envs (%s)", app.Name, envs)).String()
	}
}

// PullRequest builds the pull request options for app on branch.
// deployPR is the originating pull request number, 0 if unknown.
func (t Target) PullRequest(app registry.Application, branch string, deployPR int) pr.Options {
	var title, body string
	switch t.Kind {
	case TargetAddons:
		title = fmt.Sprintf("Addons: configure %s (%s)", app.Name, app.IssueRef)
		body = fmt.Sprintf("Automated PR to configure addons for %s.", app.Name)
		if deployPR > 0 {
			body += fmt.Sprintf(" See deploy PR #%d", deployPR)
		}
	default:
		title = fmt.Sprintf("Configure %s (%s)", app.Name, app.IssueRef)
		body = fmt.Sprintf("Automated PR to configure %s for envs: %s", app.Name, joinEnvs(app.Envs))
	}
	return pr.NewBuilder(title).
		WithBody(body).
		WithHead(branch).
		WithBase(t.Base).
		Build()
}

// LocalCommitMessage is the commit made in the deploy working tree.
func LocalCommitMessage(app string) string {
	return git.NewCommitMessage(git.CommitTypeChore, "update app config for "+app).String()
}

func joinEnvs(envs []string) string {
	return strings.Join(envs, " ")
}
