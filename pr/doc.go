// Package pr provides pull request operations against GitHub.
//
// Core types:
//   - Provider: create pull requests, comment on them, find an open one by branch
//   - Options: configuration for creating a pull request
//   - PullRequest: a pull request with its number and URL
//   - Builder: fluent builder for Options
//
// Implementations:
//   - GitHubProvider: REST API via go-github
//   - CLIProvider: the gh command line tool
//
// Providers are scoped to one repository and one token. Use New to pick a
// backend by name:
//
//	provider, err := pr.New(pr.BackendAPI, "acme/infra", cred.Token)
//	pull, err := provider.CreatePR(ctx, pr.NewBuilder("Configure x (OPS-1)").
//	    WithHead("new_app/OPS-1/configure-x").
//	    Build())
//	if errors.Is(err, pr.ErrExists) {
//	    pull, err = provider.FindOpenPR(ctx, head, "main")
//	}
package pr
