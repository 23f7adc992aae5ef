package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	dir := t.TempDir()
	err := Init(dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git directory should exist")
}

func TestIsRepo(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Init(dir))
	assert.True(t, IsRepo(dir), "initialized dir should be a repo")
}

func TestCommitAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tally.yaml"), []byte("owner: {}\n"), 0o644))

	hash, err := CommitAll(dir, "init: test commit", "Test Author", "test@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "init: test commit")

	authorLog := exec.Command("git", "log", "--format=%an <%ae>", "-1")
	authorLog.Dir = dir
	out, err = authorLog.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "Test Author <test@example.com>")
}

func TestCommitter(t *testing.T) {
	dir := t.TempDir()
	c := Committer{Dir: dir, Enabled: true, AuthorName: "Test", AuthorEmail: "test@example.com"}

	hash, err := c.Commit("not a repo")
	require.NoError(t, err)
	assert.Empty(t, hash)

	require.NoError(t, Init(dir))
	hash, err = c.Commit("nothing to commit")
	require.NoError(t, err)
	assert.Empty(t, hash)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "transactions.json"), []byte("[]\n"), 0o644))
	hash, err = c.Commit("import: statement.csv")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	dirty, err := HasChanges(dir)
	require.NoError(t, err)
	assert.False(t, dirty)
}

func TestCommitter_Disabled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte("[]"), 0o644))

	hash, err := Committer{Dir: dir}.Commit("rules: apply")
	require.NoError(t, err)
	assert.Empty(t, hash)
}
