package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type refreshTokenReaper interface {
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type blacklistReaper interface {
	CleanupExpired(ctx context.Context, now time.Time) (int64, error)
}

// TokenCleanupService purges refresh tokens and blacklist entries whose
// expiry has passed. Both deletes are unconditional range deletes, so the
// reaper can run concurrently with the live request path and a failure only
// defers storage reclamation, never correctness.
type TokenCleanupService struct {
	refresh   refreshTokenReaper
	blacklist blacklistReaper
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewTokenCleanupService constructs a TokenCleanupService.
func NewTokenCleanupService(refresh refreshTokenReaper, blacklist blacklistReaper, metrics *MetricsService, logger *zap.Logger) *TokenCleanupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenCleanupService{refresh: refresh, blacklist: blacklist, metrics: metrics, logger: logger}
}

// CleanupExpiredTokens runs one reap pass. Idempotent: a second consecutive
// run with no new expirations deletes nothing further.
func (s *TokenCleanupService) CleanupExpiredTokens(ctx context.Context) error {
	now := time.Now().UTC()

	refreshDeleted, err := s.refresh.DeleteExpiredBefore(ctx, now)
	if err != nil {
		return err
	}
	s.metrics.ObserveCleanup("refresh_tokens", refreshDeleted)

	blacklistDeleted, err := s.blacklist.CleanupExpired(ctx, now)
	if err != nil {
		return err
	}
	s.metrics.ObserveCleanup("token_blacklist", blacklistDeleted)

	if refreshDeleted > 0 || blacklistDeleted > 0 {
		s.logger.Info("expired tokens reaped",
			zap.Int64("refresh_tokens", refreshDeleted),
			zap.Int64("blacklist_entries", blacklistDeleted),
		)
	}
	return nil
}
