package documents

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docshare-backend/internal/shared/server/middleware"
	"docshare-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.listMine)
	rg.GET("/documents/public", h.listPublic)
	rg.GET("/documents/:id", h.get)
	rg.PUT("/documents/:id", h.updateMetadata)
	rg.PUT("/documents/:id/file", h.replaceFile)
	rg.PUT("/documents/:id/visibility", h.setVisibility)
	rg.DELETE("/documents/:id", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	if middleware.IsGuestFromContext(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to upload documents", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	in := UploadInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		FileName:    fileHeader.Filename,
		IsPublic:    c.PostForm("isPublic") == "true",
	}
	if raw := c.PostForm("downloadCost"); raw != "" {
		cost, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "downloadCost must be an integer", nil)
			return
		}
		in.DownloadCost = &cost
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	doc, err := h.Svc.Upload(c.Request.Context(), userID, in, file)
	if err != nil {
		writeDocumentError(c, err, "failed to upload document")
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

func (h *Handler) listMine(c *gin.Context) {
	if middleware.IsGuestFromContext(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view your documents", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	limit, offset := pageParams(c)

	docs, err := h.Svc.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}
	respond.JSON(c, http.StatusOK, toResponses(docs))
}

func (h *Handler) listPublic(c *gin.Context) {
	limit, offset := pageParams(c)

	docs, err := h.Svc.ListPublic(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}
	respond.JSON(c, http.StatusOK, toResponses(docs))
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDocumentError(c, err, "failed to fetch document")
		return
	}

	userID := middleware.UserIDFromContext(c)
	isAdmin := middleware.UserRoleFromContext(c) == middleware.RoleAdmin
	if doc.UploaderID != userID && !isAdmin && !(doc.IsPublic && doc.IsApproved()) {
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

type updateMetadataRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	DownloadCost *int64 `json:"downloadCost"`
}

func (h *Handler) updateMetadata(c *gin.Context) {
	var req updateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "title is required", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	doc, err := h.Svc.UpdateMetadata(c.Request.Context(), userID, c.Param("id"), UploadInput{
		Title:        req.Title,
		Description:  req.Description,
		DownloadCost: req.DownloadCost,
	})
	if err != nil {
		writeDocumentError(c, err, "failed to update document")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) replaceFile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

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

	doc, err := h.Svc.ReplaceFile(c.Request.Context(), userID, c.Param("id"), fileHeader.Filename, file)
	if err != nil {
		writeDocumentError(c, err, "failed to replace file")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

type visibilityRequest struct {
	IsPublic *bool `json:"isPublic" binding:"required"`
}

func (h *Handler) setVisibility(c *gin.Context) {
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "isPublic is required", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	doc, err := h.Svc.SetVisibility(c.Request.Context(), userID, c.Param("id"), *req.IsPublic)
	if err != nil {
		writeDocumentError(c, err, "failed to change visibility")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeDocumentError(c, err, "failed to delete document")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"success": true})
}

func writeDocumentError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "not the document owner", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func toResponses(docs []Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toResponse(doc))
	}
	return out
}

func pageParams(c *gin.Context) (int, int) {
	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
