package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cms.db")
	db, err := Open(path)
	require.NoError(t, err)

	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`))
	assert.Subset(t, tables, []string{"contact_submissions", "credentials", "sessions"})

	_, err = db.Exec(`INSERT INTO credentials (id, username, password_hash, updated_at) VALUES (2, 'x', 'y', CURRENT_TIMESTAMP)`)
	assert.Error(t, err)
	require.NoError(t, db.Close())

	// reopening applies nothing new
	db, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestOpenMemory(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM sessions`))
	assert.Zero(t, n)
}
