package users

import (
	"errors"

	"github.com/gin-gonic/gin"

	"job-tracker/internal/shared/server/middleware"
	"job-tracker/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches profile routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

// me returns the caller's profile with their resolved capabilities. A
// missing profile is reported as null rather than an error; the token alone
// identifies the caller.
func (h *Handler) me(c *gin.Context) {
	if h.Svc == nil {
		respond.Internal(c, "service unavailable")
		return
	}
	userID := middleware.UserIDFromContext(c)
	perms := middleware.PermissionsFromContext(c)

	var profile *ProfileResponse
	p, err := h.Svc.GetProfile(c.Request.Context(), userID)
	switch {
	case err == nil:
		resp := ToResponse(p)
		profile = &resp
	case errors.Is(err, ErrNotFound):
	default:
		respond.Internal(c, "failed to load user")
		return
	}

	respond.OK(c, gin.H{
		"uid":          userID,
		"email":        middleware.UserEmailFromContext(c),
		"provider":     middleware.ProviderFromContext(c),
		"profile":      profile,
		"capabilities": perms.Snapshot(c.Request.Context()),
	})
}
