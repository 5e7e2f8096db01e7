package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"memi-server/internal/domain"
	"memi-server/internal/domain/user"
	"memi-server/internal/utils/platformerrors"
)

// PrincipalKey is the gin context key holding the authenticated principal.
const PrincipalKey = "principal"

// Middleware authenticates requests with a bearer token and loads the
// matching account before any handler runs.
type Middleware struct {
	issuer *TokenIssuer
	users  user.Repository
}

func NewMiddleware(issuer *TokenIssuer, users user.Repository) *Middleware {
	return &Middleware{issuer: issuer, users: users}
}

// Handler rejects requests without a valid bearer token. A token whose
// subject no longer exists is rejected too; deleting an account revokes its
// outstanding tokens.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			abortUnauthorized(c, "authorization header must be a bearer token")
			return
		}

		userID, err := m.issuer.Verify(c.Request.Context(), parts[1])
		if err != nil {
			var platformErr *platformerrors.PlatformError
			if errors.As(err, &platformErr) {
				abortUnauthorized(c, platformErr.Message)
				return
			}
			abortUnauthorized(c, "invalid token")
			return
		}

		account, err := m.users.FindByID(c.Request.Context(), userID)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(PrincipalKey, domain.Principal{ID: account.ID, Username: account.Username})
		c.Next()
	}
}

// PrincipalFrom returns the authenticated principal set by Handler.
func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	val, ok := c.Get(PrincipalKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := val.(domain.Principal)
	return principal, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
