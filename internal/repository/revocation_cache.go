package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/learnverse/auth-api/pkg/errors"
)

const revocationKeyPrefix = "revoked:"

// RevocationCache keeps short-lived revocation marks in Redis so the
// per-request blacklist check is a single EXISTS instead of a database
// round trip. Postgres remains the source of truth; a nil client degrades
// every lookup to a cache miss.
type RevocationCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRevocationCache constructs a revocation cache.
func NewRevocationCache(client *redis.Client, logger *zap.Logger) *RevocationCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevocationCache{client: client, logger: logger}
}

// MarkRevoked stores a revocation mark that lives as long as the token
// itself would have. A non-positive TTL means the token is already past its
// expiry and needs no mark.
func (c *RevocationCache) MarkRevoked(ctx context.Context, token string, ttl time.Duration) error {
	if c.client == nil || ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, revocationKeyPrefix+token, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis set revocation mark: %w", err)
	}
	return nil
}

// IsRevoked reports whether a revocation mark exists for the token. A miss
// or any Redis failure returns ErrCacheMiss so the caller falls back to the
// persistent blacklist.
func (c *RevocationCache) IsRevoked(ctx context.Context, token string) (bool, error) {
	if c.client == nil {
		return false, appErrors.ErrCacheMiss
	}
	n, err := c.client.Exists(ctx, revocationKeyPrefix+token).Result()
	if err != nil {
		c.logger.Warn("revocation cache lookup failed", zap.Error(err))
		return false, appErrors.ErrCacheMiss
	}
	if n == 0 {
		return false, appErrors.ErrCacheMiss
	}
	return true, nil
}

// Close releases the underlying Redis connection if present.
func (c *RevocationCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
