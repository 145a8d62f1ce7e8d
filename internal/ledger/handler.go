package ledger

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docshare-backend/internal/shared/server/middleware"
	"docshare-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the ledger service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the user-facing points routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/points/balance", h.balance)
	rg.GET("/points/transactions", h.transactions)
}

// RegisterAdminRoutes attaches the ledger-admin routes. Callers must gate the
// group with the admin middleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/users/:id/points/adjust", h.adjust)
	rg.PUT("/users/:id/points/balance", h.setBalance)
	rg.GET("/users/:id/points/transactions", h.adminTransactions)
}

func (h *Handler) balance(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	balance, err := h.Svc.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch balance", nil)
		return
	}
	respond.OK(c, gin.H{"balance": balance})
}

func (h *Handler) transactions(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	h.listFor(c, userID)
}

func (h *Handler) adminTransactions(c *gin.Context) {
	h.listFor(c, c.Param("id"))
}

func (h *Handler) listFor(c *gin.Context, userID string) {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 20)

	result, err := h.Svc.ListTransactions(c.Request.Context(), userID, page, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list transactions", nil)
		return
	}
	respond.OK(c, result)
}

type adjustRequest struct {
	Delta int64  `json:"delta"`
	Note  string `json:"note"`
}

func (h *Handler) adjust(c *gin.Context) {
	adminID := middleware.UserIDFromContext(c)
	userID := c.Param("id")

	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.Delta == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "delta must be non-zero", nil)
		return
	}

	balance, err := h.Svc.Adjust(c.Request.Context(), adminID, userID, req.Delta, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, ErrNegativeBalance):
			respond.Error(c, http.StatusBadRequest, "validation_error", "adjustment would make balance negative", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to adjust balance", nil)
		}
		return
	}
	respond.OK(c, gin.H{"balance": balance})
}

type setBalanceRequest struct {
	Balance *int64 `json:"balance"`
	Note    string `json:"note"`
}

func (h *Handler) setBalance(c *gin.Context) {
	adminID := middleware.UserIDFromContext(c)
	userID := c.Param("id")

	var req setBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Balance == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "balance is required", nil)
		return
	}

	balance, err := h.Svc.SetBalance(c.Request.Context(), adminID, userID, *req.Balance, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, ErrNegativeBalance):
			respond.Error(c, http.StatusBadRequest, "validation_error", "balance must not be negative", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to set balance", nil)
		}
		return
	}
	respond.OK(c, gin.H{"balance": balance})
}

func parseIntQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
