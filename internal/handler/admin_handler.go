package handler

import (
	"context"
	"net/http"

	"member_portal/internal/middleware"
	"member_portal/internal/model"
	"member_portal/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler handles the admin panel and user management
type AdminHandler struct {
	users service.UserService
	log   *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(users service.UserService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, log: log}
}

func (h *AdminHandler) AdminPage(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	if err := h.users.RecordAction(ctx, user.ID, model.ActionAdminView); err != nil {
		writeError(c, h.log, err)
		return
	}
	users, err := h.users.ListUsers(ctx, user)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.HTML(http.StatusOK, "admin.html", gin.H{"title": "Admin", "user": user, "users": users})
}

func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	h.bulk(c, h.users.GrantAdmin)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	h.bulk(c, h.users.DeleteUsers)
}

type bulkOp func(ctx context.Context, actor *model.User, ids []string) (*model.BulkResult, error)

// bulk answers 200 when every identifier was applied and 207 otherwise; the
// body always carries the per-identifier outcome.
func (h *AdminHandler) bulk(c *gin.Context, op bulkOp) {
	var req model.BulkUsersRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, h.log, bindError(err))
		return
	}

	user, _ := middleware.CurrentUser(c)
	result, err := op(c.Request.Context(), user, req.SelectedUsers)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	status := http.StatusOK
	if !result.Complete() {
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}

// GetAllUsers has no route guard; ListUsers refuses anyone but an admin.
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	users, err := h.users.ListUsers(c.Request.Context(), user)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
