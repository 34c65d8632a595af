package publish

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageforge/internal/common/logger"
)

var shaRe = regexp.MustCompile(`^[0-9a-f]{40}$`)

func testOptions() Options {
	return Options{Token: "t", Owner: "octocat"}
}

func TestInitWorktreeAndCommitAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644))

	opts := testOptions().withDefaults()
	repo, err := initWorktree(dir, opts.cloneURL("todo-app-abc123"))
	require.NoError(t, err)

	remote, err := repo.Remote("origin")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://github.com/octocat/todo-app-abc123.git"}, remote.Config().URLs)

	sha, err := commitAll(repo, commitMessage(1), opts.signature())
	require.NoError(t, err)
	assert.Regexp(t, shaRe, sha)

	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, sha, head.Hash().String())
	assert.Equal(t, "refs/heads/"+DefaultBranch, head.Name().String())
}

func TestCommitAllPicksUpLaterChanges(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("v1"), 0o644))

	opts := testOptions().withDefaults()
	repo, err := initWorktree(dir, opts.cloneURL("p"))
	require.NoError(t, err)

	first, err := commitAll(repo, commitMessage(1), opts.signature())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("v2"), 0o644))
	second, err := commitAll(repo, commitMessage(2), opts.signature())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "Update for round 2", commit.Message)
}

func TestCommitMessage(t *testing.T) {
	tests := []struct {
		round int
		want  string
	}{
		{0, "Initial commit"},
		{1, "Initial commit"},
		{2, "Update for round 2"},
		{7, "Update for round 7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, commitMessage(tt.round))
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := testOptions().withDefaults()
	assert.Equal(t, "github.io", opts.PagesDomain)
	assert.Equal(t, "octocat", opts.CommitName)
	assert.Equal(t, "octocat@users.noreply.github.com", opts.CommitEmail)

	custom := Options{
		Token:       "t",
		Owner:       "octocat",
		PagesDomain: "pages.internal",
		CommitName:  "Deploy Bot",
		CommitEmail: "bot@example.com",
	}.withDefaults()
	assert.Equal(t, "pages.internal", custom.PagesDomain)
	assert.Equal(t, "Deploy Bot", custom.CommitName)
	assert.Equal(t, "bot@example.com", custom.CommitEmail)
}

func TestOptionsURLs(t *testing.T) {
	opts := testOptions()
	assert.Equal(t, "https://github.com/octocat/todo-app-abc123.git", opts.cloneURL("todo-app-abc123"))
	assert.Equal(t, "https://github.com/octocat/todo-app-abc123", opts.repoURL("todo-app-abc123"))
}

func TestRepoPublisherPagesURL(t *testing.T) {
	p := NewRepoPublisher(nil, testOptions(), logger.NewTestLogger(t))
	assert.Equal(t, "https://octocat.github.io/todo-app-abc123/", p.pagesURL("todo-app-abc123"))
}
