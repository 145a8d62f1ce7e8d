package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docshare-backend/internal/shared/server/respond"
)

// RequireAdmin rejects requests whose verified identity does not carry the admin role.
// It must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsGuestFromContext(c) || UserRoleFromContext(c) != RoleAdmin {
			respond.Error(c, http.StatusForbidden, "forbidden", "admin role required", nil)
			return
		}
		c.Next()
	}
}
