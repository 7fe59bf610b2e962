package resumes

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"job-tracker/internal/shared/server/middleware"
	"job-tracker/internal/shared/server/respond"
)

// multipart overhead allowed on top of the file limit
const formOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes", h.list)
	rg.POST("/resumes", h.upload)
	rg.GET("/resumes/default", h.defaultResume)
	rg.GET("/resumes/rules", h.rules)
	rg.GET("/resumes/:id", h.get)
	rg.PATCH("/resumes/:id", h.update)
	rg.DELETE("/resumes/:id", h.delete)
	rg.POST("/resumes/:id/default", h.setDefault)
	rg.GET("/resumes/:id/file", h.download)
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Internal(c, "failed to load resumes")
		return
	}
	f := Filter{Search: c.Query("search"), Tag: c.Query("tag")}
	respond.List(c, ToResponses(f.Apply(list)), len(list))
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.Rules.MaxSize+formOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	displayName := strings.TrimSpace(c.PostForm("displayName"))
	if displayName == "" {
		displayName = strings.TrimSuffix(fileHeader.Filename, ".pdf")
	}
	isDefault, _ := strconv.ParseBool(c.PostForm("isDefault"))

	res, err := h.Svc.Upload(c.Request.Context(), userID, UploadInput{
		DisplayName: displayName,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Tags:        formTags(c),
		IsDefault:   isDefault,
		Body:        file,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("resumeId", res.ID)
	respond.Created(c, ToResponse(res))
}

func (h *Handler) defaultResume(c *gin.Context) {
	res, err := h.Svc.Default(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, ToResponse(res))
}

func (h *Handler) rules(c *gin.Context) {
	respond.OK(c, h.Svc.Rules)
}

func (h *Handler) get(c *gin.Context) {
	res, ok := h.authorize(c)
	if !ok {
		return
	}
	respond.OK(c, ToResponse(res))
}

func (h *Handler) update(c *gin.Context) {
	res, ok := h.authorize(c)
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	updated, err := h.Svc.Update(c.Request.Context(), res.ID, Patch{
		DisplayName: req.DisplayName,
		Tags:        req.Tags,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, ToResponse(updated))
}

func (h *Handler) delete(c *gin.Context) {
	res, ok := h.authorize(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), res.ID); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) setDefault(c *gin.Context) {
	res, ok := h.authorize(c)
	if !ok {
		return
	}
	updated, err := h.Svc.SetDefault(c.Request.Context(), res.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, ToResponse(updated))
}

func (h *Handler) download(c *gin.Context) {
	res, ok := h.authorize(c)
	if !ok {
		return
	}
	body, _, err := h.Svc.Open(c.Request.Context(), res.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	defer body.Close()

	c.Header("Content-Type", res.FileType)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", res.FileName))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, body)
}

// authorize loads :id and checks the caller may touch it. Missing resumes
// are 404 before any ownership check.
func (h *Handler) authorize(c *gin.Context) (Resume, bool) {
	id := c.Param("id")
	c.Set("resumeId", id)
	res, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return Resume{}, false
	}
	if !middleware.PermissionsFromContext(c).CanModify(c.Request.Context(), res.UserID) {
		respond.Forbidden(c, "You do not have permission to perform this action.")
		return Resume{}, false
	}
	return res, true
}

// formTags accepts repeated "tags" fields or one comma-separated value.
func formTags(c *gin.Context) []string {
	var out []string
	for _, v := range c.PostFormArray("tags") {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", ErrNotFound.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": "), nil)
	default:
		respond.Internal(c, "failed to process resume")
	}
}
