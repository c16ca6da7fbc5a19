package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_RequiresArchive(t *testing.T) {
	stdout, stderr, err := execute(t, "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error ["+ErrCodeDatabase+"]")
}

func TestHistory_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "arcosphere.db")

	stdout, _, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No history.\n", stdout)
}

func TestHistory_Runs(t *testing.T) {
	db := filepath.Join(t.TempDir(), "arcosphere.db")

	_, _, err := execute(t, "solve", "EO", "LG", "--db", db)
	require.NoError(t, err)
	_, _, err = execute(t, "solve", "EP", "LX", "--db", db)
	require.NoError(t, err)

	stdout, _, err := execute(t, "history", "--db", db, "--format", "json")
	require.NoError(t, err)
	var result HistoryResult
	decodeResponse(t, stdout, &result)
	require.Len(t, result.Runs, 2)

	latest := result.Runs[0]
	assert.Equal(t, int64(2), latest.Seq)
	assert.Equal(t, "space-exploration", latest.Family)
	assert.Equal(t, "EP", latest.Source)
	assert.Equal(t, "LX", latest.Target)
	assert.Equal(t, "solved", latest.Status)
	assert.Equal(t, []string{pathViaGamma, pathViaOmega}, latest.Paths)
	assert.Equal(t, int64(1), result.Runs[1].Seq)

	stdout, _, err = execute(t, "history", "--db", db, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "#2 space-exploration EP -> LX solved")
	assert.Contains(t, stdout, "  "+pathViaGamma+"\n")
	assert.NotContains(t, stdout, "#1 ")
}

func TestHistory_DatabaseFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "arcosphere.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("db: runs.db\n"), 0644))

	_, _, err := execute(t, "solve", "EO", "LG", "--config", cfgPath)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "runs.db"))

	stdout, _, err := execute(t, "history", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "#1 space-exploration EO -> LG solved")
}
