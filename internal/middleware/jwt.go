package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/learnverse/auth-api/internal/models"
)

// ContextIdentityKey is the gin context key storing the request Identity.
const ContextIdentityKey = "currentIdentity"

// Authenticator resolves a bearer token into an Identity.
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (*models.Identity, error)
}

// Authenticate attaches an Identity to the request when a valid,
// non-revoked bearer token is present. Every failure mode (missing header,
// bad signature, expired, revoked) leaves the request anonymous and lets it
// continue; route-level authorization decides whether anonymous is enough.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		identity, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// CurrentIdentity returns the Identity set by Authenticate, or nil for an
// anonymous request.
func CurrentIdentity(c *gin.Context) *models.Identity {
	if v, exists := c.Get(ContextIdentityKey); exists {
		if identity, ok := v.(*models.Identity); ok {
			return identity
		}
	}
	return nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
