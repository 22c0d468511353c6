package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSqliteStore(t *testing.T) *SqliteCheckpointStore {
	t.Helper()
	s, err := NewSqliteCheckpointStore(SqliteOptions{
		Path: filepath.Join(t.TempDir(), "checkpoints.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSqliteCheckpointStore(t *testing.T) {
	exerciseStore(t, newTestSqliteStore(t))
}

func TestSqliteStatePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoints.db")
	ctx := context.Background()

	s, err := NewSqliteCheckpointStore(SqliteOptions{Path: path})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-1", "exec-1", "identify_industry", 1)))
	require.NoError(t, s.Close())

	s, err = NewSqliteCheckpointStore(SqliteOptions{Path: path})
	require.NoError(t, err)
	defer s.Close()

	cp, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "identify_industry", cp.NodeName)

	state, ok := cp.State.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Acme", state["target_company"])
}

func TestSqliteCustomTableName(t *testing.T) {
	s, err := NewSqliteCheckpointStore(SqliteOptions{
		Path:      filepath.Join(t.TempDir(), "checkpoints.db"),
		TableName: "custom_checkpoints",
	})
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}
