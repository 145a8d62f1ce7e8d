package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"docshare-backend/internal/account"
	googleauth "docshare-backend/internal/auth"
	"docshare-backend/internal/authz"
	"docshare-backend/internal/documents"
	"docshare-backend/internal/downloads"
	"docshare-backend/internal/ledger"
	"docshare-backend/internal/moderation"
	"docshare-backend/internal/queue"
	"docshare-backend/internal/settings"
	"docshare-backend/internal/sharelinks"
	"docshare-backend/internal/shared/config"
	"docshare-backend/internal/shared/server"
	"docshare-backend/internal/shared/storage/db"
	"docshare-backend/internal/shared/storage/object"
	localstore "docshare-backend/internal/shared/storage/object/local"
	s3store "docshare-backend/internal/shared/storage/object/s3"
	"docshare-backend/internal/users"
)

// App holds the wired application dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	DocumentsRepo documents.DocumentsRepo
	DownloadsRepo downloads.Repo
	ShareLinkRepo sharelinks.Repo
	UsersRepo     users.Repo

	LedgerService     *ledger.Service
	SettingsService   *settings.Service
	DocumentsService  *documents.Service
	ShareLinkService  *sharelinks.Service
	ModerationService *moderation.Service
	DownloadsService  *downloads.Service
	AccountService    *account.Service
	UsersService      *users.Service
	Authorizer        *authz.Authorizer
	GoogleAuth        *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		Store:             app.Store,
		AccountHandler:    account.NewHandler(app.AccountService),
		DocumentHandler:   documents.NewHandler(app.DocumentsService),
		DownloadHandler:   downloads.NewHandler(app.DownloadsService),
		ShareLinkHandler:  sharelinks.NewHandler(app.ShareLinkService, app.DocumentsService),
		LedgerHandler:     ledger.NewHandler(app.LedgerService),
		SettingsHandler:   settings.NewHandler(app.SettingsService),
		ModerationHandler: moderation.NewHandler(app.ModerationService),
		UserHandler:       users.NewHandler(app.UsersService),
		GoogleAuth:        app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("NOTIFY_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	var docRepo documents.DocumentsRepo
	var downloadRepo downloads.Repo
	var linkRepo sharelinks.Repo
	var userRepo users.Repo
	var ledgerSvc *ledger.Service
	var settingsSvc *settings.Service

	defaultCost := int64(app.Config.DefaultDownloadCost)
	defaultReward := int64(app.Config.DefaultUploadReward)

	if app.DB != nil {
		ledgerStore := ledger.NewPGStore(app.DB)
		docRepo = &documents.PGRepo{DB: app.DB}
		downloadRepo = &downloads.PGRepo{DB: app.DB, Ledger: ledgerStore}
		linkRepo = &sharelinks.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
		ledgerSvc = ledger.NewPostgresService(ledgerStore)
		settingsSvc = settings.NewPostgresService(settings.NewPGStore(app.DB), defaultCost, defaultReward)
	} else {
		docRepo = documents.NewMemoryRepo()
		downloadRepo = downloads.NewMemoryRepo()
		linkRepo = sharelinks.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
		ledgerSvc = ledger.NewService()
		settingsSvc = settings.NewService(defaultCost, defaultReward)
	}

	docSvc := documents.NewService(app.Store, docRepo, ledgerSvc, settingsSvc)
	linkSvc := sharelinks.NewService(linkRepo, app.Config.ShareLinkTTL)
	authorizer := authz.NewAuthorizer(linkSvc)
	moderationSvc := moderation.NewService(documents.NewModerationGateway(docRepo), app.Queue)
	downloadSvc := downloads.NewService(downloadRepo, docRepo, authorizer, ledgerSvc, settingsSvc, app.Store, app.Config.DownloadURLTTL)
	userSvc := users.NewService(userRepo)

	app.DocumentsRepo = docRepo
	app.DownloadsRepo = downloadRepo
	app.ShareLinkRepo = linkRepo
	app.UsersRepo = userRepo
	app.LedgerService = ledgerSvc
	app.SettingsService = settingsSvc
	app.DocumentsService = docSvc
	app.ShareLinkService = linkSvc
	app.ModerationService = moderationSvc
	app.DownloadsService = downloadSvc
	app.AccountService = account.NewService(docRepo, ledgerSvc, linkSvc)
	app.UsersService = userSvc
	app.Authorizer = authorizer
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)
}
