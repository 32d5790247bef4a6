package locker

import (
	"context"
	"koppeltaal-service/internal/pkg/koppeltaaltest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLockService(t *testing.T) {
	ctx := context.Background()
	repo := koppeltaaltest.NewMemoryRedis()
	svc := NewLockService(repo, zap.NewNop())

	ok, value, err := svc.TryLock(ctx, "lock:watchdog", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, value)

	t.Run("Second Holder Is Refused", func(t *testing.T) {
		ok, other, err := svc.TryLock(ctx, "lock:watchdog", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, other)
	})

	t.Run("Refresh Extends Owned Lock", func(t *testing.T) {
		require.NoError(t, svc.Refresh(ctx, "lock:watchdog", value, 5*time.Minute))
		assert.Greater(t, repo.TTL("lock:watchdog"), 4*time.Minute)
	})

	t.Run("Foreign Value Cannot Unlock Or Refresh", func(t *testing.T) {
		assert.Error(t, svc.Unlock(ctx, "lock:watchdog", "someone-else"))
		assert.Error(t, svc.Refresh(ctx, "lock:watchdog", "someone-else", time.Minute))
	})

	t.Run("Owner Unlocks", func(t *testing.T) {
		require.NoError(t, svc.Unlock(ctx, "lock:watchdog", value))
		ok, _, err := svc.TryLock(ctx, "lock:watchdog", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Unlocking A Missing Lock Is A No-op", func(t *testing.T) {
		assert.NoError(t, svc.Unlock(ctx, "lock:nothing", "v"))
		assert.Error(t, svc.Refresh(ctx, "lock:nothing", "v", time.Minute))
	})
}

func TestLockService_Expiry(t *testing.T) {
	ctx := context.Background()
	repo := koppeltaaltest.NewMemoryRedis()
	now := time.Now()
	repo.Now = func() time.Time { return now }
	svc := NewLockService(repo, zap.NewNop())

	ok, _, err := svc.TryLock(ctx, "lock:k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	ok, _, err = svc.TryLock(ctx, "lock:k", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
