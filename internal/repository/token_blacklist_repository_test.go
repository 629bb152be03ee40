package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnverse/auth-api/internal/models"
)

func TestInsertBlacklistedToken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTokenBlacklistRepository(db)

	mock.ExpectExec("INSERT INTO token_blacklist").WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.BlacklistedToken{Token: "jwt-string", ExpiryDate: time.Now().Add(time.Hour)}
	err := repo.Insert(context.Background(), entry)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.BlacklistedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlacklistExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTokenBlacklistRepository(db)

	rows := sqlmock.NewRows([]string{"exists"}).AddRow(true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM token_blacklist WHERE token = $1)")).
		WithArgs("jwt-string").
		WillReturnRows(rows)

	exists, err := repo.Exists(context.Background(), "jwt-string")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlacklistDeleteExpired(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTokenBlacklistRepository(db)

	cutoff := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM token_blacklist WHERE expiry_date < $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 2))

	deleted, err := repo.DeleteExpiredBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
