package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_ReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "archive.db")

	s, err := Open(path, WithRunIDGenerator(NewFixedGenerator("run-1")))
	require.NoError(t, err)
	_, err = s.WriteRun(ctx, createTestRun("h1", "EO -> LG => EO -> LG"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	for i := 0; i < 2; i++ {
		s, err = Open(path)
		require.NoError(t, err, "reopen %d", i)

		run, ok, err := s.FindSolved(ctx, "h1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "run-1", run.ID)
		require.NoError(t, s.Close())
	}
}

func TestOpen_MissingDirectory(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "archive.db"))
	assert.Error(t, err)
}

func TestClose_ZeroStore(t *testing.T) {
	assert.NoError(t, (&Store{}).Close())
}

func TestArchive_ForeignKeysEnforced(t *testing.T) {
	s := createTestStore(t)

	var on int
	require.NoError(t, s.db.QueryRow("PRAGMA foreign_keys").Scan(&on))
	assert.Equal(t, 1, on)

	_, err := s.db.Exec(`
		INSERT INTO results (run_id, position, path, stages, recipes)
		VALUES ('missing', 0, 'EO -> LG => EO -> LG', 1, 1)
	`)
	assert.Error(t, err, "a result needs its run")
}

func TestArchive_ResultsCascadeWithRun(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, WithRunIDGenerator(NewFixedGenerator("run-1")))

	_, err := s.WriteRun(ctx, createTestRun("h1", "EO -> LG => EO -> LG", "EP -> LX + G => PG -> XO | EO -> LG"))
	require.NoError(t, err)

	_, err = s.db.Exec("DELETE FROM runs WHERE id = 'run-1'")
	require.NoError(t, err)

	var left int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM results").Scan(&left))
	assert.Zero(t, left)
}

func TestArchive_RejectsUnknownStatus(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`
		INSERT INTO runs (id, seq, request_hash, family, source, target, config, status)
		VALUES ('run-1', 1, 'h', 'f', 'EO', 'LG', '{}', 'pending')
	`)
	assert.Error(t, err)
}

func TestMigrations_CurrentVersion(t *testing.T) {
	s := createTestStore(t)

	assert.Equal(t, schemaVersion(), userVersion(t, s.db))
	assert.Contains(t, runIndexes(t, s.db), "idx_runs_request_hash")
}

func TestMigrations_UpgradeFromUnversioned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")

	// An archive written before versioning: base schema, user_version 0.
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(schemaSQL)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, schemaVersion(), userVersion(t, s.db))
	assert.Contains(t, runIndexes(t, s.db), "idx_runs_request_hash")
}

func userVersion(t *testing.T, db *sql.DB) int {
	t.Helper()
	var version int
	require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&version))
	return version
}

func runIndexes(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'runs'")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}
