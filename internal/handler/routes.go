package handler

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"member_portal/internal/apperror"
	mw "member_portal/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Route is one entry of the HTTP surface. Guards run in order before Handle.
type Route struct {
	Method string
	Path   string
	Guards []gin.HandlerFunc
	Handle gin.HandlerFunc
}

// Routes returns the full route table in registration order.
func Routes(auth *AuthHandler, members *MemberHandler, admin *AdminHandler) []Route {
	page := mw.RequireUser(mw.RedirectHome)
	adminPage := mw.RequireAdmin(mw.RedirectHome)
	adminAPI := mw.RequireAdmin(mw.Forbid)
	memberAPI := mw.RequireUser(mw.Unauthorized)

	return []Route{
		{Method: http.MethodGet, Path: "/", Handle: members.Index},
		{Method: http.MethodGet, Path: "/signup", Handle: auth.SignupPage},
		{Method: http.MethodGet, Path: "/login", Handle: auth.LoginPage},
		{Method: http.MethodGet, Path: "/members", Guards: []gin.HandlerFunc{page}, Handle: members.Members},
		{Method: http.MethodGet, Path: "/admin", Guards: []gin.HandlerFunc{page, adminPage}, Handle: admin.AdminPage},
		{Method: http.MethodGet, Path: "/logout", Guards: []gin.HandlerFunc{page}, Handle: auth.Logout},
		{Method: http.MethodPost, Path: "/signup", Handle: auth.Signup},
		{Method: http.MethodPost, Path: "/login", Handle: auth.Login},
		{Method: http.MethodPut, Path: "/updateUserRole", Guards: []gin.HandlerFunc{adminAPI}, Handle: admin.UpdateUserRole},
		{Method: http.MethodDelete, Path: "/deleteUser", Guards: []gin.HandlerFunc{adminAPI}, Handle: admin.DeleteUser},
		{Method: http.MethodPost, Path: "/callAPI", Guards: []gin.HandlerFunc{memberAPI}, Handle: members.CallAPI},
		{Method: http.MethodGet, Path: "/getAllUserAPI", Handle: admin.GetAllUsers},
	}
}

// Pinger reports whether the user store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig holds the collaborators shared by every route.
type RouterConfig struct {
	Log        *zap.Logger
	Authn      mw.Authenticator
	CookieName string
	// Health is optional; without it /health always reports ok.
	Health Pinger
}

// NewRouter builds the gin engine: access log, recovery, identity, then the
// route table. Wrap it with middleware.MethodOverride before serving so the
// admin page forms reach the PUT and DELETE routes.
func NewRouter(cfg RouterConfig, routes []Route) *gin.Engine {
	r := gin.New()
	r.Use(
		mw.RequestLogger(cfg.Log),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			cfg.Log.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
			internal := apperror.NewStoreFailure("Internal server error", nil)
			c.AbortWithStatusJSON(internal.StatusCode(), internal.Response())
		}),
		mw.Authenticate(cfg.Authn, cfg.CookieName, cfg.Log),
	)
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	r.GET("/health", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health.Ping(c.Request.Context()); err != nil {
				cfg.Log.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	for _, route := range routes {
		handlers := append(append([]gin.HandlerFunc{}, route.Guards...), route.Handle)
		r.Handle(route.Method, route.Path, handlers...)
	}

	r.NoRoute(func(c *gin.Context) {
		notFound := apperror.NewNotFound("Page not found")
		c.JSON(notFound.StatusCode(), notFound.Response())
	})
	return r
}
