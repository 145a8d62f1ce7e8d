package downloads

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docshare-backend/internal/authz"
	"docshare-backend/internal/documents"
	"docshare-backend/internal/ledger"
	"docshare-backend/internal/shared/server/middleware"
	"docshare-backend/internal/shared/server/respond"
)

const shareTokenHeader = "X-Share-Token"

// Handler exposes the download endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches download routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/download", h.initDownload)
	rg.POST("/downloads/:id/confirm", h.confirm)
	rg.POST("/downloads/:id/cancel", h.cancel)
}

func (h *Handler) initDownload(c *gin.Context) {
	req := authz.Requester{
		ID:         middleware.UserIDFromContext(c),
		Role:       middleware.UserRoleFromContext(c),
		ShareToken: shareToken(c),
	}

	result, err := h.Svc.InitDownload(c.Request.Context(), c.Param("id"), req, c.ClientIP())
	if err != nil {
		var authErr *AuthorizationError
		switch {
		case errors.As(err, &authErr):
			respond.Error(c, http.StatusForbidden, "forbidden", authErr.Reason, nil)
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ledger.ErrInsufficientBalance):
			respond.Error(c, http.StatusPaymentRequired, "insufficient_balance", "not enough points for this download", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start download", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, result)
}

func (h *Handler) confirm(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	attempt, err := h.Svc.ConfirmDownload(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeDownloadError(c, err, "failed to confirm download")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"success":          true,
		"uploaderRewarded": attempt.UploaderRewarded,
	})
}

func (h *Handler) cancel(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.CancelDownload(c.Request.Context(), c.Param("id"), userID); err != nil {
		writeDownloadError(c, err, "failed to cancel download")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"success": true})
}

func writeDownloadError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "download not found", nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func shareToken(c *gin.Context) string {
	if token := c.Query("shareToken"); token != "" {
		return token
	}
	return c.GetHeader(shareTokenHeader)
}
