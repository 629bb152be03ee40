package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/learnverse/auth-api/internal/models"
)

// TokenBlacklistRepository persists access token strings explicitly revoked
// before their natural expiry. The token column is uniquely indexed; the
// per-request revocation check must stay a point lookup.
type TokenBlacklistRepository struct {
	db *sqlx.DB
}

// NewTokenBlacklistRepository creates a new instance of TokenBlacklistRepository.
func NewTokenBlacklistRepository(db *sqlx.DB) *TokenBlacklistRepository {
	return &TokenBlacklistRepository{db: db}
}

// Insert records a blacklisted access token. Re-blacklisting the same token
// is tolerated so a repeated logout stays idempotent.
func (r *TokenBlacklistRepository) Insert(ctx context.Context, entry *models.BlacklistedToken) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.BlacklistedAt.IsZero() {
		entry.BlacklistedAt = time.Now().UTC()
	}
	const query = `INSERT INTO token_blacklist (id, token, expiry_date, blacklisted_at) VALUES (:id, :token, :expiry_date, :blacklisted_at) ON CONFLICT (token) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert blacklisted token: %w", err)
	}
	return nil
}

// Exists reports whether the exact token string has been blacklisted.
func (r *TokenBlacklistRepository) Exists(ctx context.Context, token string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM token_blacklist WHERE token = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, token); err != nil {
		return false, fmt.Errorf("blacklist lookup: %w", err)
	}
	return exists, nil
}

// DeleteExpiredBefore purges entries whose recorded expiry passed before the
// cutoff. Once the token itself has expired the entry is redundant.
func (r *TokenBlacklistRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM token_blacklist WHERE expiry_date < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired blacklist entries: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return deleted, nil
}
