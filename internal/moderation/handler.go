package moderation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docshare-backend/internal/shared/server/middleware"
	"docshare-backend/internal/shared/server/respond"
)

// Handler exposes the admin moderation endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterAdminRoutes attaches moderation routes to the admin router group.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/moderation/pending", h.listPending)
	rg.POST("/documents/:id/approve", h.approve)
	rg.POST("/documents/:id/reject", h.reject)
}

func (h *Handler) listPending(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 20)
	docs, total, err := h.Svc.ListPending(c.Request.Context(), page, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list pending documents", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"documents": docs,
		"page":      page,
		"limit":     limit,
		"total":     total,
	})
}

type approveRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) approve(c *gin.Context) {
	var req approveRequest
	_ = c.ShouldBindJSON(&req)

	adminID := middleware.UserIDFromContext(c)
	doc, err := h.Svc.Approve(c.Request.Context(), c.Param("id"), adminID, req.Notes)
	if err != nil {
		writeModerationError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, doc)
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *Handler) reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "reason is required", nil)
		return
	}

	adminID := middleware.UserIDFromContext(c)
	doc, err := h.Svc.Reject(c.Request.Context(), c.Param("id"), adminID, req.Reason)
	if err != nil {
		writeModerationError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, doc)
}

func writeModerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrReasonRequired):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to apply moderation decision", nil)
	}
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
