package middleware

import (
	"context"

	"member_portal/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticator resolves a session token to its user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// Authenticate establishes the request identity from the session cookie.
// It never rejects a request: a missing, invalid or expired token, or a
// token whose user no longer exists, leaves the request anonymous.
func Authenticate(auth Authenticator, cookieName string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.Debug("session token rejected", zap.Error(err))
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(ContextWithUser(c.Request.Context(), *user))
		c.Next()
	}
}
