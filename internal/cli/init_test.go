package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndValidateConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("SQLITE_DB_PATH", filepath.Join(dir, "db", "expenses.db"))
	t.Setenv("REMOTE_BACKEND", "memory")
	t.Setenv("OBJECT_STORE", "memory")

	cfg, err := LoadAndValidateConfig()
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)

	t.Setenv("REMOTE_BACKEND", "supabase")
	_, err = LoadAndValidateConfig()
	assert.ErrorContains(t, err, "SUPABASE_URL is required")
}

func TestInitSQLite(t *testing.T) {
	repo, err := InitSQLite(filepath.Join(t.TempDir(), "expenses.db"))
	require.NoError(t, err)
	assert.NoError(t, repo.Close())
}

func TestSignalContextStop(t *testing.T) {
	ctx, stop := SignalContext(context.Background())
	stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled by stop")
	}
}
