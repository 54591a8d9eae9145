package middleware

import (
	"context"

	"member_portal/internal/model"

	"github.com/gin-gonic/gin"
)

type ctxKey string

const userKey ctxKey = "authUser"

// ContextWithUser returns a child context carrying a copy of user.
func ContextWithUser(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user attached by Authenticate, if any.
// The returned value is a copy; changing it does not affect other handlers.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(model.User)
	if !ok {
		return nil, false
	}
	return &user, true
}

// CurrentUser is UserFromContext for gin handlers
func CurrentUser(c *gin.Context) (*model.User, bool) {
	return UserFromContext(c.Request.Context())
}
