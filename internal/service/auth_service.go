package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/learnverse/auth-api/internal/models"
	appErrors "github.com/learnverse/auth-api/pkg/errors"
)

// logoutTimeout bounds the teardown steps; a timeout still surfaces as
// success to the caller since sessions are short-lived anyway.
const logoutTimeout = 5 * time.Second

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
}

type refreshTokenStore interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

type accessTokenRevoker interface {
	Blacklist(ctx context.Context, token string, expiryDate time.Time) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret        string
	Issuer        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// AuthService implements credential issuance and the session lifecycle:
// register, login with single-session enforcement, refresh without
// rotation, best-effort logout and logout-all.
type AuthService struct {
	users     authUserRepository
	refresh   refreshTokenStore
	blacklist accessTokenRevoker
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, refresh refreshTokenStore, blacklist accessTokenRevoker, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{
		users:     users,
		refresh:   refresh,
		blacklist: blacklist,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		config:    config,
	}
}

// Register creates a USER principal and issues its first session.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest, meta models.LoginRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid register payload")
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	return s.issueSession(ctx, user, meta)
}

// Login authenticates a user and issues a session. A successful login
// deletes every prior refresh token for the user (single-session policy);
// already-issued access tokens keep living until their own expiry.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.ObserveLogin("invalid_credentials")
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.ObserveLogin("invalid_credentials")
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	if !user.Active {
		s.metrics.ObserveLogin("disabled")
		return nil, appErrors.Clone(appErrors.ErrAccountDisabled, "")
	}

	// Delete-then-insert is deliberately not transactional: two racing
	// logins can at worst force an extra re-login, never grant access.
	if err := s.refresh.DeleteByUserID(ctx, user.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear previous sessions")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}

	res, err := s.issueSession(ctx, user, req)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveLogin("success")
	return res, nil
}

// Refresh exchanges a still-valid refresh token for a new access token. The
// refresh token string is returned unchanged and its lifetime is never
// extended; an expired token is deleted as a side effect (fail-and-reap).
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	stored, err := s.refresh.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrRefreshNotFound, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch refresh token")
	}

	if stored.Expired(time.Now().UTC()) {
		if err := s.refresh.DeleteByToken(ctx, stored.Token); err != nil {
			s.logger.Warn("failed to reap expired refresh token", zap.Error(err))
		}
		return nil, appErrors.Clone(appErrors.ErrRefreshExpired, "")
	}

	// Reload the user so the new access token carries the current role.
	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate access token")
	}

	return &models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: stored.Token,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.config.AccessExpiry.Seconds()),
		Role:         user.Role,
		UserID:       user.ID,
	}, nil
}

// Logout tears down a session best-effort and never fails. Blacklisting the
// access token and deleting the refresh token are independent steps; a
// malformed or already-expired access token simply skips the blacklist.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) {
	ctx, cancel := context.WithTimeout(ctx, logoutTimeout)
	defer cancel()

	if accessToken != "" {
		if claims, err := s.ValidateToken(accessToken); err == nil {
			if err := s.blacklist.Blacklist(ctx, accessToken, claims.ExpiresAt.Time); err != nil {
				s.logger.Warn("failed to blacklist access token", zap.Error(err))
			}
		} else {
			s.logger.Debug("skipping blacklist for unparseable access token", zap.Error(err))
		}
	}

	if refreshToken != "" {
		if err := s.refresh.DeleteByToken(ctx, refreshToken); err != nil {
			s.logger.Warn("failed to delete refresh token on logout", zap.Error(err))
		}
	}
}

// LogoutAllDevices deletes every refresh token for the user. Outstanding
// access tokens are not blacklisted; they die at their own short expiry.
func (s *AuthService) LogoutAllDevices(ctx context.Context, userID string) error {
	if err := s.refresh.DeleteByUserID(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete refresh tokens")
	}
	return nil
}

// ValidateToken verifies signature and expiry, returning the claims. It
// does not consult the revocation list; see Authenticate.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// Authenticate resolves a bearer token into an Identity. The revocation
// check is independent of signature validity and overrides it, so logout
// can kill a not-yet-expired token. Any failure collapses to an error the
// middleware downgrades to anonymous.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.Identity, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		s.metrics.ObserveTokenValidation("invalid")
		return nil, err
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, tokenString)
	if err != nil {
		s.metrics.ObserveTokenValidation("error")
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "revocation check failed")
	}
	if revoked {
		s.metrics.ObserveTokenValidation("revoked")
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token revoked")
	}

	s.metrics.ObserveTokenValidation("ok")
	return models.NewIdentity(claims), nil
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User, meta models.LoginRequest) (*models.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	tokenValue, err := generateRefreshTokenString()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create refresh token")
	}

	now := time.Now().UTC()
	refreshToken := &models.RefreshToken{
		ID:         uuid.NewString(),
		Token:      tokenValue,
		UserID:     user.ID,
		ExpiryDate: now.Add(s.config.RefreshExpiry),
		CreatedAt:  now,
		DeviceInfo: deviceInfo(meta.UserAgent, meta.IP),
	}
	if err := s.refresh.Create(ctx, refreshToken); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist refresh token")
	}

	return &models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.config.AccessExpiry.Seconds()),
		Role:         user.Role,
		UserID:       user.ID,
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		Role:  user.Role,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func generateRefreshTokenString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func deviceInfo(userAgent, ip string) string {
	if userAgent == "" {
		userAgent = "Unknown"
	}
	return userAgent + " - " + ip
}
