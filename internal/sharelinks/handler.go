package sharelinks

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docshare-backend/internal/documents"
	"docshare-backend/internal/shared/server/middleware"
	"docshare-backend/internal/shared/server/respond"
)

// Handler exposes share link endpoints. Ownership is checked against the
// documents service before any link mutation.
type Handler struct {
	Svc  *Service
	Docs *documents.Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, docsSvc *documents.Service) *Handler {
	return &Handler{Svc: svc, Docs: docsSvc}
}

// RegisterRoutes attaches share link routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents/:id/share-link", h.get)
	rg.POST("/documents/:id/share-link", h.regenerate)
	rg.DELETE("/documents/:id/share-link", h.revoke)
}

func (h *Handler) get(c *gin.Context) {
	documentID, ok := h.requireOwner(c)
	if !ok {
		return
	}
	link, err := h.Svc.Active(c.Request.Context(), documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no active share link", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch share link", nil)
		return
	}
	respond.JSON(c, http.StatusOK, link)
}

func (h *Handler) regenerate(c *gin.Context) {
	documentID, ok := h.requireOwner(c)
	if !ok {
		return
	}
	userID := middleware.UserIDFromContext(c)
	link, err := h.Svc.Regenerate(c.Request.Context(), documentID, userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to regenerate share link", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, link)
}

func (h *Handler) revoke(c *gin.Context) {
	documentID, ok := h.requireOwner(c)
	if !ok {
		return
	}
	revoked, err := h.Svc.Revoke(c.Request.Context(), documentID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to revoke share link", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"revoked": revoked})
}

func (h *Handler) requireOwner(c *gin.Context) (string, bool) {
	documentID := c.Param("id")
	userID := middleware.UserIDFromContext(c)
	if _, err := h.Docs.GetOwned(c.Request.Context(), userID, documentID); err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, documents.ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "not the document owner", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load document", nil)
		}
		return "", false
	}
	return documentID, true
}
