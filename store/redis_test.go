package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisCheckpointStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisCheckpointStore(RedisOptions{Addr: mr.Addr(), TTL: ttl})
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisCheckpointStore(t *testing.T) {
	s, _ := newTestRedisStore(t, 0)
	exerciseStore(t, s)
}

func TestRedisKeyPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisCheckpointStore(RedisOptions{Addr: mr.Addr(), Prefix: "custom:"})
	defer s.Close()

	require.NoError(t, s.Save(context.Background(), newCheckpoint("cp-1", "exec-1", "n", 1)))

	assert.True(t, mr.Exists("custom:checkpoint:cp-1"))
	assert.True(t, mr.Exists("custom:execution:exec-1:checkpoints"))
}

func TestRedisExpiredCheckpointsSkippedInList(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newCheckpoint("cp-1", "exec-1", "identify_industry", 1)))

	// Keep the execution set alive but let the checkpoint itself expire.
	s.client.Persist(ctx, "langagent:execution:exec-1:checkpoints")
	mr.FastForward(2 * time.Minute)

	cps, err := s.List(ctx, "exec-1")
	require.NoError(t, err)
	assert.Empty(t, cps)
}
