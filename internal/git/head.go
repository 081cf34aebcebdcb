package git

import (
	"errors"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

// HeadRevision returns the HEAD commit hash of the repository containing dir.
// Parent directories are searched for the repository. An empty string is
// returned when dir is not inside a repository or HEAD has no commit yet.
// Other failures are git category warnings: the build can proceed without a
// revision.
func HeadRevision(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return "", nil
	}
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryGit, "failed to open repository").
			Warning().WithContext("path", dir).Build()
	}

	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", nil
	}
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryGit, "failed to resolve HEAD").
			Warning().WithContext("path", dir).Build()
	}
	return head.Hash().String(), nil
}

// Short abbreviates a commit hash for display.
func Short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
