package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnverse/auth-api/internal/models"
)

type fakeRefreshReaper struct {
	rows  map[string]models.RefreshToken
	calls int
}

func (r *fakeRefreshReaper) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.calls++
	var deleted int64
	for id, row := range r.rows {
		if row.ExpiryDate.Before(cutoff) {
			delete(r.rows, id)
			deleted++
		}
	}
	return deleted, nil
}

func TestCleanupExpiredTokens(t *testing.T) {
	now := time.Now().UTC()
	refresh := &fakeRefreshReaper{rows: map[string]models.RefreshToken{
		"dead": {ID: "dead", ExpiryDate: now.Add(-time.Hour)},
		"live": {ID: "live", ExpiryDate: now.Add(time.Hour)},
	}}
	blacklistRepo := newFakeBlacklistRepo()
	require.NoError(t, blacklistRepo.Insert(context.Background(), &models.BlacklistedToken{ID: "1", Token: "dead", ExpiryDate: now.Add(-time.Minute)}))
	blacklist := NewTokenBlacklistService(blacklistRepo, nil, NewMetricsService(), zap.NewNop())

	svc := NewTokenCleanupService(refresh, blacklist, NewMetricsService(), zap.NewNop())

	require.NoError(t, svc.CleanupExpiredTokens(context.Background()))
	assert.Len(t, refresh.rows, 1)
	assert.Empty(t, blacklistRepo.entries)

	// Idempotent: a second pass with no new expirations deletes nothing.
	require.NoError(t, svc.CleanupExpiredTokens(context.Background()))
	assert.Len(t, refresh.rows, 1)
	assert.Equal(t, 2, refresh.calls)
}
