package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/learnverse/auth-api/internal/models"
	appErrors "github.com/learnverse/auth-api/pkg/errors"
)

type blacklistRepository interface {
	Insert(ctx context.Context, entry *models.BlacklistedToken) error
	Exists(ctx context.Context, token string) (bool, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type revocationCache interface {
	MarkRevoked(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// TokenBlacklistService is the revocation list for access tokens. A
// blacklist entry overrides an otherwise valid signature, so logout can kill
// a token before its natural expiry. Entries carry the token's own expiry so
// the reaper can purge them once they are moot.
type TokenBlacklistService struct {
	repo    blacklistRepository
	cache   revocationCache
	metrics *MetricsService
	logger  *zap.Logger
}

// NewTokenBlacklistService constructs a TokenBlacklistService. The cache is
// optional; without it every check goes straight to the repository.
func NewTokenBlacklistService(repo blacklistRepository, cache revocationCache, metrics *MetricsService, logger *zap.Logger) *TokenBlacklistService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenBlacklistService{repo: repo, cache: cache, metrics: metrics, logger: logger}
}

// Blacklist records the access token as revoked until its natural expiry.
func (s *TokenBlacklistService) Blacklist(ctx context.Context, token string, expiryDate time.Time) error {
	entry := &models.BlacklistedToken{
		Token:         token,
		ExpiryDate:    expiryDate,
		BlacklistedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return err
	}

	if s.cache != nil {
		ttl := time.Until(expiryDate)
		if err := s.cache.MarkRevoked(ctx, token, ttl); err != nil {
			// The persistent entry already guarantees correctness.
			s.logger.Warn("failed to mark revocation in cache", zap.Error(err))
		}
	}
	return nil
}

// IsBlacklisted reports whether the exact token string has been revoked.
// The cache answers positives cheaply; a miss falls through to the indexed
// blacklist lookup.
func (s *TokenBlacklistService) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	if s.cache != nil {
		revoked, err := s.cache.IsRevoked(ctx, token)
		if err == nil {
			s.metrics.ObserveRevocationLookup(true)
			return revoked, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("revocation cache error", zap.Error(err))
		}
		s.metrics.ObserveRevocationLookup(false)
	}

	return s.repo.Exists(ctx, token)
}

// CleanupExpired purges entries whose recorded expiry has passed and
// returns the number deleted.
func (s *TokenBlacklistService) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.DeleteExpiredBefore(ctx, now)
}
