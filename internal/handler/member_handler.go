package handler

import (
	"net/http"

	"member_portal/internal/middleware"
	"member_portal/internal/model"
	"member_portal/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MemberHandler serves the landing page and the member-only surface
type MemberHandler struct {
	users service.UserService
	api   service.APIService
	log   *zap.Logger
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(users service.UserService, api service.APIService, log *zap.Logger) *MemberHandler {
	return &MemberHandler{users: users, api: api, log: log}
}

func (h *MemberHandler) Index(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	c.HTML(http.StatusOK, "index.html", gin.H{"title": "Home", "user": user})
}

func (h *MemberHandler) Members(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if err := h.users.RecordAction(c.Request.Context(), user.ID, model.ActionMembersView); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.HTML(http.StatusOK, "members.html", gin.H{"title": "Members", "user": user})
}

// CallAPI relays the compute service's JSON answer unchanged.
func (h *MemberHandler) CallAPI(c *gin.Context) {
	var req model.CallAPIRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, h.log, bindError(err))
		return
	}

	user, _ := middleware.CurrentUser(c)
	body, err := h.api.Call(c.Request.Context(), user, req.Input)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
