package backend

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "robots.txt"), []byte("ok"), 0644))

	b, err := Dir(root)
	require.NoError(t, err)
	f, err := b.Open("/robots.txt")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))

	_, err = b.Open("/missing")
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, ETag(b))
}

func TestETag(t *testing.T) {
	assert.Equal(t, "abc", ETag(gitBackend{cid: "abc"}))
}

func TestGitNotARepository(t *testing.T) {
	_, err := Git(t.TempDir(), "main")
	assert.Error(t, err)
}

// gitRepo commits files to branch main of a new checkout and returns its
// path and the commit id.
func gitRepo(t *testing.T, files map[string]string) (string, string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	git := func(args ...string) string {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Editor", "GIT_AUTHOR_EMAIL=editor@gamegeek.vn",
			"GIT_COMMITTER_NAME=Editor", "GIT_COMMITTER_EMAIL=editor@gamegeek.vn",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
		return strings.TrimSpace(string(out))
	}
	git("init", "-q")
	git("symbolic-ref", "HEAD", "refs/heads/main")
	for name, content := range files {
		fpath := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(fpath), 0755))
		require.NoError(t, os.WriteFile(fpath, []byte(content), 0644))
	}
	git("add", ".")
	git("-c", "commit.gpgsign=false", "commit", "-q", "-m", "content")
	return dir, git("rev-parse", "HEAD")
}

func TestGitCheckout(t *testing.T) {
	dir, head := gitRepo(t, map[string]string{
		"src/data/content.json": `{"a":"b"}`,
		"public/robots.txt":     "ok",
	})

	// uncommitted changes are not served
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public/robots.txt"), []byte("dirty"), 0644))

	for _, root := range []string{dir, filepath.Join(dir, ".git")} {
		b, err := Git(root, "main")
		require.NoError(t, err, root)
		assert.Equal(t, head, ETag(b))

		f, err := b.Open("/src/data/content.json")
		require.NoError(t, err)
		data, err := io.ReadAll(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, `{"a":"b"}`, string(data))

		f, err = b.Open("/public/robots.txt")
		require.NoError(t, err)
		data, err = io.ReadAll(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, "ok", string(data))

		d, err := b.Open("/src/data")
		require.NoError(t, err)
		fis, err := d.Readdir(-1)
		d.Close()
		require.NoError(t, err)
		require.Len(t, fis, 1)
		assert.Equal(t, "content.json", fis[0].Name())

		_, err = b.Open("/missing.txt")
		assert.True(t, os.IsNotExist(err))
	}
}

func TestGitUnknownBranch(t *testing.T) {
	dir, _ := gitRepo(t, map[string]string{"a.txt": "a"})
	_, err := Git(dir, "release")
	assert.Error(t, err)
}
