// Package git provides the git operations the propagation workflow needs:
// fetching, reading files at a revision, staging, committing, branching,
// pushing and cloning.
//
// Every command is run through a CommandRunner with an explicit argument
// list; nothing is ever passed through a shell.
//
// Core types:
//   - Context: git operations rooted at one working tree
//   - CommandRunner: executes commands (ExecRunner, MockRunner, SequentialMockRunner)
//   - ObjectReader: in-process reads of files at a revision (go-git)
//   - BranchNamer: builds new-application branch names
//   - CommitMessage: conventional commit subject builder
//
// Example usage:
//
//	gc, err := git.NewContext(".")
//	if err := gc.StageAll(); err != nil { ... }
//	if err := gc.Commit("chore: update app config for billing"); errors.Is(err, git.ErrNothingToCommit) {
//	    // tolerated
//	}
//	err = gc.Push("origin", "HEAD:feature/x", false)
package git
