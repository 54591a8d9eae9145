package middleware

import (
	"net/http"

	"member_portal/internal/apperror"

	"github.com/gin-gonic/gin"
)

var (
	errLoginRequired = apperror.NewInvalidCredential("Login required")
	errForbidden     = apperror.NewForbidden("You do not have permission to access this resource")
)

// RedirectHome sends the client to the landing page. Page gates use it for
// every failure so the response never tells why access was refused.
func RedirectHome(c *gin.Context) {
	c.Redirect(http.StatusFound, "/")
	c.Abort()
}

// Unauthorized rejects an API call that needs a logged-in user
func Unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(errLoginRequired.StatusCode(), errLoginRequired.Response())
}

// Forbid rejects an API call that needs an admin
func Forbid(c *gin.Context) {
	c.AbortWithStatusJSON(errForbidden.StatusCode(), errForbidden.Response())
}

// RequireUser lets the request through only when Authenticate attached a user.
func RequireUser(deny gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			deny(c)
			return
		}
		c.Next()
	}
}

// RequireAdmin lets the request through only for admins. Anonymous callers
// are denied the same way as non-admins.
func RequireAdmin(deny gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin {
			deny(c)
			return
		}
		c.Next()
	}
}
