// Package ctxutil moves request scoped values between gin and context.Context.
package ctxutil

import (
	"context"

	"backoffice/api/response"
	"backoffice/domain/identity"
	"backoffice/infrastructure/persistence"

	"github.com/gin-gonic/gin"
)

// PrincipalKey is the gin context key set by the auth middleware.
const PrincipalKey = "principal"

// WithRequestID returns the request context carrying the request id, so
// GORM logs can be correlated with the access log.
func WithRequestID(c *gin.Context) context.Context {
	requestID := response.GetRequestID(c)
	return persistence.ContextWithRequestID(c.Request.Context(), requestID)
}

func SetPrincipal(c *gin.Context, p identity.Principal) {
	c.Set(PrincipalKey, p)
}

// Principal returns the resolved principal, or Unauthenticated when the
// auth middleware did not run.
func Principal(c *gin.Context) identity.Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(identity.Principal); ok {
			return p
		}
	}
	return identity.Unauthenticated()
}
