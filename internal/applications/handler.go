package applications

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"job-tracker/internal/export"
	"job-tracker/internal/shared/server/middleware"
	"job-tracker/internal/shared/server/respond"
	"job-tracker/internal/validation"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches application routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/applications", h.list)
	rg.POST("/applications", h.create)
	rg.GET("/applications/stats", h.stats)
	rg.GET("/applications/export", h.export)
	rg.GET("/applications/:id", h.get)
	rg.PATCH("/applications/:id", h.update)
	rg.DELETE("/applications/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	apps, err := h.Svc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respond.Internal(c, "failed to load applications")
		return
	}
	f := Filter{Search: c.Query("search"), Status: c.Query("status")}
	respond.List(c, ToResponses(f.Apply(apps)), len(apps))
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req applicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(c, err)
		return
	}
	app, err := h.Svc.Create(c.Request.Context(), userID, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("applicationId", app.ID)
	respond.Created(c, ToResponse(app))
}

func (h *Handler) get(c *gin.Context) {
	app, ok := h.load(c)
	if !ok {
		return
	}
	if !middleware.PermissionsFromContext(c).CanModify(c.Request.Context(), app.UserID) {
		forbidden(c)
		return
	}
	respond.OK(c, ToResponse(app))
}

func (h *Handler) update(c *gin.Context) {
	app, ok := h.load(c)
	if !ok {
		return
	}
	if !middleware.PermissionsFromContext(c).CanModify(c.Request.Context(), app.UserID) {
		forbidden(c)
		return
	}

	var req applicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeError(c, err)
		return
	}
	updated, err := h.Svc.Update(c.Request.Context(), app.ID, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, ToResponse(updated))
}

func (h *Handler) delete(c *gin.Context) {
	app, ok := h.load(c)
	if !ok {
		return
	}
	if !middleware.PermissionsFromContext(c).CanDelete(c.Request.Context(), app.UserID) {
		forbidden(c)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), app.ID); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) stats(c *gin.Context) {
	apps, err := h.Svc.ListByUser(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Internal(c, "failed to load applications")
		return
	}
	respond.OK(c, Statistics(apps, h.Svc.now()))
}

// export downloads the caller's own applications, narrowed by the same
// filters as the list.
func (h *Handler) export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	apps, err := h.Svc.ListByUser(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Internal(c, "failed to load applications")
		return
	}
	apps = Filter{Search: c.Query("search"), Status: c.Query("status")}.Apply(apps)
	WriteExport(c, format, "", ToExportRows(apps, nil), export.Options{}, h.Svc.now())
}

// WriteExport renders rows as a download. An empty list is a 404 with the
// "No data to export" message and no body bytes.
func WriteExport(c *gin.Context, format export.Format, prefix string, rows []export.Row, opts export.Options, now time.Time) {
	var buf bytes.Buffer
	if err := export.Write(&buf, format, rows, opts); err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			respond.Error(c, http.StatusNotFound, "nothing_to_export", err.Error(), nil)
			return
		}
		respond.Internal(c, "failed to export applications")
		return
	}
	filename := export.Filename(prefix, format, now)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// ToExportRows flattens applications for export. emails, when non-nil, maps
// owner ids to addresses for the all-users variant.
func ToExportRows(apps []Application, emails map[string]string) []export.Row {
	rows := make([]export.Row, 0, len(apps))
	for _, app := range apps {
		row := export.Row{
			ID:          app.ID,
			JobTitle:    app.JobTitle,
			Company:     app.Company,
			DateApplied: app.DateApplied,
			Location:    app.Location,
			Status:      string(app.Status),
			StatusLabel: app.Status.Label(),
			Salary:      app.Salary,
			JobURL:      app.JobURL,
			Notes:       app.Notes,
		}
		if emails != nil {
			row.UserEmail = emails[app.UserID]
		}
		rows = append(rows, row)
	}
	return rows
}

// load resolves :id, writing 404 when missing.
func (h *Handler) load(c *gin.Context) (Application, bool) {
	id := c.Param("id")
	c.Set("applicationId", id)
	app, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return Application{}, false
	}
	return app, true
}

func forbidden(c *gin.Context) {
	respond.Forbidden(c, "You do not have permission to perform this action.")
}

func writeError(c *gin.Context, err error) {
	var fieldErrs validation.Errors
	switch {
	case errors.Is(err, ErrNotFound):
		respond.NotFound(c, "application")
	case errors.As(err, &fieldErrs):
		respond.Error(c, http.StatusBadRequest, "validation_error", fieldErrs.Error(), fieldErrs.Details())
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Internal(c, "failed to process application")
	}
}
