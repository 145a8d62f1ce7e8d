package server

import (
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"docshare-backend/internal/account"
	googleauth "docshare-backend/internal/auth"
	"docshare-backend/internal/documents"
	"docshare-backend/internal/downloads"
	"docshare-backend/internal/ledger"
	"docshare-backend/internal/moderation"
	"docshare-backend/internal/settings"
	"docshare-backend/internal/sharelinks"
	"docshare-backend/internal/shared/config"
	"docshare-backend/internal/shared/metrics"
	"docshare-backend/internal/shared/server/middleware"
	"docshare-backend/internal/shared/server/respond"
	"docshare-backend/internal/shared/storage/object"
	localstore "docshare-backend/internal/shared/storage/object/local"
	"docshare-backend/internal/uploads"
	"docshare-backend/internal/users"
)

// RouterDeps carries the handlers the router wires up. Nil handlers are
// skipped so tests can build partial routers.
type RouterDeps struct {
	Config            config.Config
	Store             object.ObjectStore
	AccountHandler    *account.Handler
	DocumentHandler   *documents.Handler
	DownloadHandler   *downloads.Handler
	ShareLinkHandler  *sharelinks.Handler
	LedgerHandler     *ledger.Handler
	SettingsHandler   *settings.Handler
	ModerationHandler *moderation.Handler
	UserHandler       *users.Handler
	GoogleAuth        *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"DOWNLOAD_INIT": {Rate: 1, Burst: 10},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/documents/:id/download" {
					return "DOWNLOAD_INIT"
				}
				return ""
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.ShareLinkHandler != nil {
		deps.ShareLinkHandler.RegisterRoutes(api)
	}
	if deps.DownloadHandler != nil {
		deps.DownloadHandler.RegisterRoutes(api)
	}
	if deps.LedgerHandler != nil {
		deps.LedgerHandler.RegisterRoutes(api)
	}
	uploads.RegisterRoutes(api)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	if deps.ModerationHandler != nil {
		deps.ModerationHandler.RegisterAdminRoutes(admin)
	}
	if deps.LedgerHandler != nil {
		deps.LedgerHandler.RegisterAdminRoutes(admin)
	}
	if deps.SettingsHandler != nil {
		deps.SettingsHandler.RegisterAdminRoutes(admin)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterAdminRoutes(admin)
	}

	if local, ok := deps.Store.(*localstore.Store); ok {
		registerFileRoutes(r, local)
	}

	return r
}

// registerFileRoutes serves locally stored objects behind the HMAC-signed
// URLs minted by the local store's SignedURL.
func registerFileRoutes(r *gin.Engine, store *localstore.Store) {
	r.GET("/files/*key", func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		exp, err := strconv.ParseInt(c.Query("exp"), 10, 64)
		if err != nil || !localstore.VerifySignedKey(key, exp, c.Query("sig")) {
			respond.Error(c, http.StatusForbidden, "forbidden", "invalid or expired file link", nil)
			return
		}

		rc, err := store.Open(c.Request.Context(), key)
		if err != nil {
			respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
			return
		}
		defer rc.Close()

		c.Header("Content-Disposition", "attachment; filename=\""+path.Base(key)+"\"")
		c.Header("Content-Type", "application/octet-stream")
		c.Status(http.StatusOK)
		_, _ = io.Copy(c.Writer, rc)
	})
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
