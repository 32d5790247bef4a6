package ledger

import (
	"context"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/koppeltaaltest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func claim(id string, at time.Time) models.ClaimRecord {
	return models.ClaimRecord{
		HeaderID:  id,
		HeaderRef: "https://kt.example/FHIR/Koppeltaal/MessageHeader/" + id + "/_history/2",
		Version:   "2",
		MessageID: "msg-" + id,
		Event:     models.EventCreateOrUpdateCarePlan,
		Patient:   "https://kt.example/FHIR/Koppeltaal/Patient/p1/_history/1",
		ClaimedAt: at,
	}
}

func TestRedisClaimLedger(t *testing.T) {
	ctx := context.Background()
	l := NewRedisClaimLedger(koppeltaaltest.NewMemoryRedis(), zap.NewNop())
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, l.Record(ctx, claim("h1", now.Add(-20*time.Minute))))
	require.NoError(t, l.Record(ctx, claim("h2", now.Add(-10*time.Minute))))
	require.NoError(t, l.Record(ctx, claim("h3", now)))

	t.Run("Get Round Trips The Record", func(t *testing.T) {
		got, err := l.Get(ctx, "h1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, claim("h1", now.Add(-20*time.Minute)), *got)
		assert.True(t, got.Open())
	})

	t.Run("Unknown Header", func(t *testing.T) {
		got, err := l.Get(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Lists Oldest Open Claims First", func(t *testing.T) {
		open, err := l.ListOpenOlderThan(ctx, now.Add(-5*time.Minute), 10)
		require.NoError(t, err)
		require.Len(t, open, 2)
		assert.Equal(t, "h1", open[0].HeaderID)
		assert.Equal(t, "h2", open[1].HeaderID)
	})

	t.Run("Honours Limit", func(t *testing.T) {
		open, err := l.ListOpenOlderThan(ctx, now, 1)
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, "h1", open[0].HeaderID)
	})

	t.Run("Completed Claims Drop Out", func(t *testing.T) {
		require.NoError(t, l.Complete(ctx, "h1", models.ProcessingStatusSuccess, "", now))

		got, err := l.Get(ctx, "h1")
		require.NoError(t, err)
		assert.False(t, got.Open())
		assert.Equal(t, models.ProcessingStatusSuccess, got.Outcome)

		open, err := l.ListOpenOlderThan(ctx, now, 10)
		require.NoError(t, err)
		require.Len(t, open, 2)
		assert.Equal(t, "h2", open[0].HeaderID)
	})

	t.Run("Reclaim Reopens", func(t *testing.T) {
		require.NoError(t, l.Record(ctx, claim("h1", now)))
		got, err := l.Get(ctx, "h1")
		require.NoError(t, err)
		assert.True(t, got.Open())
		assert.Empty(t, got.Outcome)
	})
}
