package handler

import (
	"member_portal/internal/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError renders err as {"error": kind, "message": ...} with the status
// of its kind. Server-side failures are logged with the wrapped cause, which
// never reaches the client.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	appErr := apperror.From(err)
	status := appErr.StatusCode()
	if status >= 500 {
		log.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("kind", string(appErr.Kind)),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, appErr.Response())
}

func bindError(err error) error {
	return apperror.NewValidation("Invalid request: "+err.Error(), err)
}
