package settings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docshare-backend/internal/shared/server/middleware"
	"docshare-backend/internal/shared/server/respond"
)

// Handler exposes admin endpoints for the platform points settings.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterAdminRoutes attaches settings routes to the admin router group.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/settings/points", h.getSettings)
	rg.PUT("/settings/points", h.updateSettings)
}

func (h *Handler) getSettings(c *gin.Context) {
	ps, err := h.Svc.Get(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch settings", nil)
		return
	}
	respond.JSON(c, http.StatusOK, ps)
}

type updateSettingsRequest struct {
	DownloadCost *int64 `json:"downloadCost" binding:"required"`
	UploadReward *int64 `json:"uploadReward" binding:"required"`
}

func (h *Handler) updateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "downloadCost and uploadReward are required", nil)
		return
	}
	adminID := middleware.UserIDFromContext(c)
	ps, err := h.Svc.Update(c.Request.Context(), adminID, *req.DownloadCost, *req.UploadReward)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSettings):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update settings", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, ps)
}
