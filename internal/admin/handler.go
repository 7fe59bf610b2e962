// Package admin serves the administrator routes: every user's applications,
// site-wide statistics, user management and the all-users export.
package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"job-tracker/internal/applications"
	"job-tracker/internal/export"
	"job-tracker/internal/screens"
	"job-tracker/internal/shared/server/middleware"
	"job-tracker/internal/shared/server/respond"
	"job-tracker/internal/users"
)

// Handler wires HTTP handlers to the services.
type Handler struct {
	Deps screens.Deps
	Now  func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(deps screens.Deps) *Handler {
	return &Handler{Deps: deps, Now: time.Now}
}

// RegisterRoutes attaches admin routes. Every route requires the admin role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/admin", middleware.RequireAdmin())
	g.GET("/applications", h.applications)
	g.GET("/stats", h.stats)
	g.GET("/users", h.users)
	g.PATCH("/users/:uid/active", h.setActive)
	g.PATCH("/users/:uid/admin", h.setAdmin)
	g.GET("/export", h.export)
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now().UTC()
	}
	return h.Now().UTC()
}

type adminStats struct {
	TotalApplications    int                         `json:"totalApplications"`
	TotalUsers           int                         `json:"totalUsers"`
	ApplicationsByStatus map[applications.Status]int `json:"applicationsByStatus"`
	RecentApplications   int                         `json:"recentApplications"`
	SuccessRate          float64                     `json:"successRate"`
}

func (h *Handler) applications(c *gin.Context) {
	apps, emails, total, ok := h.loadFiltered(c)
	if !ok {
		return
	}
	items := make([]screens.AdminApplicationResponse, 0, len(apps))
	for _, app := range apps {
		items = append(items, screens.AdminApplicationResponse{
			ApplicationResponse: applications.ToResponse(app),
			UserEmail:           emails[app.UserID],
		})
	}
	respond.List(c, items, total)
}

// loadFiltered joins every application with its owner's email and applies
// the search, status and user query filters.
func (h *Handler) loadFiltered(c *gin.Context) ([]applications.Application, map[string]string, int, bool) {
	joined, err := screens.LoadAdminApplications(c.Request.Context(), h.Deps)
	if err != nil {
		respond.Internal(c, "failed to load applications")
		return nil, nil, 0, false
	}
	emails := make(map[string]string, len(joined))
	apps := make([]applications.Application, 0, len(joined))
	for _, j := range joined {
		emails[j.UserID] = j.UserEmail
		apps = append(apps, j.Application)
	}
	return screens.FilterAdminApplications(apps, emails, c.Query("search"), c.Query("status"), c.Query("user")), emails, len(joined), true
}

func (h *Handler) stats(c *gin.Context) {
	ctx := c.Request.Context()
	apps, err := h.Deps.Applications.ListAll(ctx)
	if err != nil {
		respond.Internal(c, "failed to load applications")
		return
	}
	profiles, err := h.Deps.Users.ListAll(ctx)
	if err != nil {
		respond.Internal(c, "failed to load users")
		return
	}
	st := applications.Statistics(apps, h.now())
	respond.OK(c, adminStats{
		TotalApplications:    st.Total,
		TotalUsers:           len(profiles),
		ApplicationsByStatus: st.ByStatus,
		RecentApplications:   st.Recent,
		SuccessRate:          st.SuccessRate,
	})
}

func (h *Handler) users(c *gin.Context) {
	profiles, err := h.Deps.Users.ListAll(c.Request.Context())
	if err != nil {
		respond.Internal(c, "failed to load users")
		return
	}
	filtered := screens.FilterUsers(profiles, c.Query("search"), c.Query("status"), c.Query("role"))
	respond.OK(c, gin.H{
		"items": users.ToResponses(filtered),
		"total": len(profiles),
		"stats": users.Statistics(profiles, h.now()),
	})
}

type flagRequest struct {
	Value *bool `json:"value"`
}

func bindFlag(c *gin.Context) (bool, bool) {
	var r flagRequest
	if err := c.ShouldBindJSON(&r); err != nil || r.Value == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "value must be true or false", nil)
		return false, false
	}
	return *r.Value, true
}

func (h *Handler) setActive(c *gin.Context) {
	value, ok := bindFlag(c)
	if !ok {
		return
	}
	p, err := h.Deps.Users.SetActive(c.Request.Context(), c.Param("uid"), value)
	h.writeToggle(c, p, err, users.ActiveNotice(p.Email, value, err))
}

func (h *Handler) setAdmin(c *gin.Context) {
	value, ok := bindFlag(c)
	if !ok {
		return
	}
	p, err := h.Deps.Users.SetAdmin(c.Request.Context(), c.Param("uid"), value)
	h.writeToggle(c, p, err, users.AdminNotice(p.Email, value, err))
}

func (h *Handler) writeToggle(c *gin.Context, p users.Profile, err error, n users.Notice) {
	switch {
	case errors.Is(err, users.ErrNotFound):
		respond.NotFound(c, "user")
	case err != nil:
		respond.Internal(c, n.Message)
	default:
		respond.OK(c, gin.H{
			"profile": users.ToResponse(p),
			"notice":  gin.H{"message": n.Message, "durationMs": n.Duration.Milliseconds()},
		})
	}
}

func (h *Handler) export(c *gin.Context) {
	if !middleware.PermissionsFromContext(c).CanExportData(c.Request.Context()) {
		respond.Forbidden(c, screens.ErrForbidden.Error())
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	apps, emails, _, ok := h.loadFiltered(c)
	if !ok {
		return
	}
	applications.WriteExport(c, format, "all-job-applications", applications.ToExportRows(apps, emails),
		export.Options{IncludeUserEmail: true}, h.now())
}
