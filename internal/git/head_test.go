package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

func TestHeadRevision_NotARepository(t *testing.T) {
	rev, err := HeadRevision(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, rev)
}

func TestHeadRevision_UnbornHead(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	rev, err := HeadRevision(dir)
	require.NoError(t, err)
	assert.Empty(t, rev)
}

func TestHeadRevision_BrokenGitFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git"), []byte("garbage\n"), 0o600))

	rev, err := HeadRevision(dir)
	require.Error(t, err)
	assert.Empty(t, rev)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryGit))
	assert.Equal(t, ferrors.SeverityWarning, ferrors.GetSeverity(err))
}

func TestHeadRevision_FromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	content := filepath.Join(dir, "content")
	require.NoError(t, os.MkdirAll(content, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(content, "index.md"), []byte("# Home\n"), 0o600))

	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(".")
	require.NoError(t, err)
	commit, err := w.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	rev, err := HeadRevision(content)
	require.NoError(t, err)
	assert.Equal(t, commit.String(), rev)
	assert.Len(t, Short(rev), 12)
}

func TestShort(t *testing.T) {
	assert.Equal(t, "abc", Short("abc"))
	assert.Equal(t, "0123456789ab", Short("0123456789abcdef"))
}
