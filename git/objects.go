package git

import (
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ObjectReader reads committed files directly from the object database,
// without spawning git.
type ObjectReader struct {
	repo *gogit.Repository
}

// OpenObjectReader opens the repository containing path.
func OpenObjectReader(path string) (*ObjectReader, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, ErrNotGitRepo
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &ObjectReader{repo: repo}, nil
}

// ReadFileAt returns the contents of path as of rev.
// rev accepts anything go-git resolves, e.g. "origin/main" or a SHA.
func (o *ObjectReader) ReadFileAt(rev, path string) ([]byte, error) {
	hash, err := o.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRevisionNotFound, rev)
	}

	commit, err := o.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRevisionNotFound, rev)
	}

	file, err := commit.File(filepath.ToSlash(path))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s:%s", ErrPathNotFound, rev, path)
		}
		return nil, fmt.Errorf("read %s at %s: %w", path, rev, err)
	}

	contents, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("read %s at %s: %w", path, rev, err)
	}
	return []byte(contents), nil
}
