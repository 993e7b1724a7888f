package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", cfg.Bind)
	assert.Equal(t, "tcp", cfg.Network)
	assert.Equal(t, "dir", cfg.Content.Source)
	assert.Equal(t, "khai-nguyen-dinh/gamegeek", cfg.GitHub.Repo)
	assert.Equal(t, "main", cfg.GitHub.Branch)
	assert.Equal(t, "geekcms.db", cfg.DB.Path)
	assert.Equal(t, 2*time.Second, cfg.Sync.Debounce)
	assert.Equal(t, "origin", cfg.Sync.Remote)
}

func TestConfigFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
bind: 0.0.0.0:9000
content:
  source: github
github:
  repo: acme/site
  token: from-file
sync:
  debounce: 5s
`), 0644))

	t.Setenv("GEEKCMS_DB_PATH", "/var/lib/cms.db")
	t.Setenv("KEYSTATIC_GITHUB_CLIENT_ID", "legacy-id")
	t.Setenv("KEYSTATIC_GITHUB_TOKEN", "legacy-token")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("bind", "localhost:8080", "")
	fs.Bool("debug", false, "")
	require.NoError(t, fs.Parse([]string{"--debug"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Bind)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "github", cfg.Content.Source)
	assert.Equal(t, "acme/site", cfg.GitHub.Repo)
	assert.Equal(t, "legacy-token", cfg.GitHub.Token)
	assert.Equal(t, "legacy-id", cfg.OAuth.ClientID)
	assert.Equal(t, "/var/lib/cms.db", cfg.DB.Path)
	assert.Equal(t, 5*time.Second, cfg.Sync.Debounce)
}

func TestPrefixedEnvWins(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GITHUB_TOKEN", "plain")
	t.Setenv("GEEKCMS_GITHUB_TOKEN", "prefixed")
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.GitHub.Token)
}

func TestExplicitConfigMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GEEKCMS_CONTENT_SOURCE", "s3")
	_, err := Load("", nil)
	assert.Error(t, err)

	cfg := &Config{Content: Content{Source: "dir"}, GitHub: GitHub{Repo: "noslash"}}
	assert.Error(t, cfg.Validate())
}
