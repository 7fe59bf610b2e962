package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"job-tracker/internal/admin"
	"job-tracker/internal/applications"
	"job-tracker/internal/auth"
	"job-tracker/internal/liveview"
	"job-tracker/internal/permissions"
	"job-tracker/internal/resumes"
	"job-tracker/internal/services/health"
	"job-tracker/internal/shared/config"
	"job-tracker/internal/shared/metrics"
	"job-tracker/internal/shared/server/middleware"
	"job-tracker/internal/shared/server/respond"
	"job-tracker/internal/users"
)

// RouterDeps groups the handlers the router mounts.
type RouterDeps struct {
	Config             config.Config
	Health             *health.Service
	AuthService        *auth.Service
	AuthHandler        *auth.Handler
	GoogleAuth         *auth.GoogleService
	UserHandler        *users.Handler
	ApplicationHandler *applications.Handler
	ResumeHandler      *resumes.Handler
	AdminHandler       *admin.Handler
	LiveHandler        *liveview.Handler
	UsersService       *users.Service
	RateLimiter        *middleware.RateLimiter
}

var rateLimitRules = map[string]middleware.RateLimitRule{
	"DEFAULT": {Rate: 10, Burst: 40},
	"WRITE":   {Rate: 2, Burst: 10},
	"UPLOAD":  {Rate: 0.2, Burst: 3},
	"AUTH":    {Rate: 1, Burst: 10},
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	var revocations middleware.RevocationChecker
	if deps.AuthService != nil {
		revocations = deps.AuthService
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(revocations),
		middleware.Permissions(adminLookup(deps.UsersService)),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    rateLimitRules,
			GroupFor: rateLimitGroup,
			Limiter:  deps.RateLimiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		hs := deps.Health
		if hs == nil {
			hs = health.NewService()
		}
		report := hs.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})

	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterRoutes(api)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.ApplicationHandler != nil {
		deps.ApplicationHandler.RegisterRoutes(api)
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(api)
	}
	if deps.AdminHandler != nil {
		deps.AdminHandler.RegisterRoutes(api)
	}
	if deps.LiveHandler != nil {
		deps.LiveHandler.RegisterRoutes(api)
	}

	return r
}

// adminLookup treats everyone as a regular user when no users service is
// wired.
func adminLookup(svc *users.Service) permissions.AdminLookup {
	if svc == nil {
		return permissions.AdminLookupFunc(func(context.Context, string) (bool, error) {
			return false, nil
		})
	}
	return svc
}

func rateLimitGroup(c *gin.Context) string {
	path := c.Request.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/v1/live/"):
		return "NONE"
	case strings.HasPrefix(path, "/api/v1/auth/"):
		return "AUTH"
	case c.Request.Method == http.MethodPost && path == "/api/v1/resumes":
		return "UPLOAD"
	case c.Request.Method != http.MethodGet:
		return "WRITE"
	default:
		return "DEFAULT"
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
