package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/learnverse/auth-api/internal/models"
	appErrors "github.com/learnverse/auth-api/pkg/errors"
)

type userRoleRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id string, role models.UserRole, updatedAt time.Time) error
}

// UserService covers the small slice of user management the auth core owns:
// seeding the bootstrap admin and promoting users to tutors.
type UserService struct {
	repo   userRoleRepository
	logger *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(repo userRoleRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

// EnsureAdmin creates the configured ADMIN account if it does not exist.
// Called once at startup; missing config disables the bootstrap.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("bootstrap admin created", zap.String("email", email))
	return nil
}

// UpgradeToTutor promotes a USER to TUTOR. Sessions issued before the
// promotion keep their old role until the next refresh re-reads the user.
func (s *UserService) UpgradeToTutor(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if user.Role == models.RoleTutor {
		return user, nil
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateRole(ctx, user.ID, models.RoleTutor, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}

	user.Role = models.RoleTutor
	user.UpdatedAt = now
	return user, nil
}
