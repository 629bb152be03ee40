package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/learnverse/auth-api/internal/models"
	appErrors "github.com/learnverse/auth-api/pkg/errors"
)

type fakeRoleRepo struct {
	*fakeUserRepo
}

func (r *fakeRoleRepo) UpdateRole(_ context.Context, id string, role models.UserRole, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		u.Role = role
		u.UpdatedAt = updatedAt
	}
	return nil
}

func TestEnsureAdminCreatesOnce(t *testing.T) {
	repo := &fakeRoleRepo{newFakeUserRepo()}
	svc := NewUserService(repo, zap.NewNop())

	require.NoError(t, svc.EnsureAdmin(context.Background(), "Root", "admin@example.com", "changeme"))

	admin, err := repo.FindByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("changeme")))

	// A second call must not create a duplicate.
	require.NoError(t, svc.EnsureAdmin(context.Background(), "Root", "admin@example.com", "changeme"))
	assert.Len(t, repo.byEmail, 1)
}

func TestEnsureAdminSkipsWithoutConfig(t *testing.T) {
	repo := &fakeRoleRepo{newFakeUserRepo()}
	svc := NewUserService(repo, zap.NewNop())

	require.NoError(t, svc.EnsureAdmin(context.Background(), "", "", ""))
	assert.Empty(t, repo.byEmail)
}

func TestUpgradeToTutor(t *testing.T) {
	user := testUser(t, models.RoleUser)
	repo := &fakeRoleRepo{newFakeUserRepo(user)}
	svc := NewUserService(repo, zap.NewNop())

	updated, err := svc.UpgradeToTutor(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTutor, updated.Role)

	// Already a tutor: no-op.
	updated, err = svc.UpgradeToTutor(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTutor, updated.Role)
}

func TestUpgradeToTutorUnknownUser(t *testing.T) {
	repo := &fakeRoleRepo{newFakeUserRepo()}
	svc := NewUserService(repo, zap.NewNop())

	_, err := svc.UpgradeToTutor(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
