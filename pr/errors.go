package pr

import "errors"

// PR provider errors
var (
	// ErrUnknownBackend indicates an unsupported provider backend name.
	ErrUnknownBackend = errors.New("unknown PR backend")

	// ErrInvalidRepo indicates a repository identifier that is not owner/name.
	ErrInvalidRepo = errors.New("invalid repository identifier")

	// ErrExists indicates a PR already exists for the branch.
	ErrExists = errors.New("pull request already exists for this branch")

	// ErrNotFound indicates the PR does not exist.
	ErrNotFound = errors.New("pull request not found")

	// ErrNoChanges indicates there are no changes between branches.
	ErrNoChanges = errors.New("no changes between branches")
)
