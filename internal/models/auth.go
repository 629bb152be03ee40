package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest holds the payload for creating a new account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest carries the refresh token to tear down alongside the
// bearer access token from the Authorization header.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is the session object returned by register, login and
// refresh. The refresh token is reused verbatim across refresh calls.
type AuthResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	TokenType    string   `json:"tokenType"`
	ExpiresIn    int64    `json:"expiresIn"`
	Role         UserRole `json:"role"`
	UserID       string   `json:"userId"`
}

// JWTClaims is the access token payload. Subject carries the user ID;
// role and email are the only custom claims.
type JWTClaims struct {
	Role  UserRole `json:"role"`
	Email string   `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *JWTClaims) UserID() string {
	return c.Subject
}

// Identity is the authenticated principal attached to a request by the
// token validator. An absent Identity means the request is anonymous.
type Identity struct {
	UserID      string
	Role        UserRole
	Email       string
	Authorities []string
	Claims      *JWTClaims
}

// NewIdentity builds an Identity from verified claims.
func NewIdentity(claims *JWTClaims) *Identity {
	return &Identity{
		UserID:      claims.Subject,
		Role:        claims.Role,
		Email:       claims.Email,
		Authorities: []string{"ROLE_" + string(claims.Role)},
		Claims:      claims,
	}
}
