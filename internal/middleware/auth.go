package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/stellaredu/consult-api/internal/models"
	"github.com/stellaredu/consult-api/internal/service"
	appErrors "github.com/stellaredu/consult-api/pkg/errors"
	"github.com/stellaredu/consult-api/pkg/response"
)

// Context keys set by Authenticate.
const (
	ContextUserKey   = "currentUser"
	ContextClaimsKey = "currentClaims"
	ContextSourceKey = "tokenSource"
)

// Authenticate protects routes behind the token resolution chain: session
// cookie, then bearer header, then the auth cookie. Unresolved requests get a
// uniform 401 regardless of why resolution failed.
func Authenticate(resolver *service.ResolverService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, claims, source := resolver.Resolve(c.Request.Context(), c.Request)
		if user == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextClaimsKey, claims)
		c.Set(ContextSourceKey, source)
		c.Next()
	}
}

// RequireRoles enforces role membership for routes already behind
// Authenticate. The allow-set is declarative at route registration, replacing
// per-handler role checks.
func RequireRoles(allowed ...models.UserRole) gin.HandlerFunc {
	allowedSet := make(map[models.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		user := value.(*models.User)

		if _, ok := allowedSet[user.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
