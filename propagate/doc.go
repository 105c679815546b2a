// Package propagate detects applications added to the registry and
// propagates their scaffolding to dependent repositories.
//
// A run compares the registry at the base branch with the working tree,
// and for each new application:
//
//  1. renders it into the working tree, commits and pushes to the head ref
//  2. clones every target repository with an installation token, renders
//     it there on branch new_app/{issue}/configure-{app}, pushes and opens
//     a pull request
//
// then posts one summary comment on the originating pull request.
//
// # Basic Usage
//
//	p := propagate.New(local, propagate.Options{
//	    BaseBranch: "main",
//	    PushRef:    "feature/add-billing",
//	    DeployRepo: "acme/deploy",
//	    Targets:    propagate.TargetsFor("acme/infra", "acme/addons", "main", false),
//	    PRNumber:   42,
//	},
//	    propagate.WithRenderer(renderer),
//	    propagate.WithTokenSource(tokens),
//	    propagate.WithProviderFactory(factory),
//	    propagate.WithCommenter(commenter),
//	)
//	result, err := p.Run(ctx)
//
// Runs are sequential. Re-running is safe: empty commits are tolerated and
// an already-open pull request for the branch is reused.
package propagate
