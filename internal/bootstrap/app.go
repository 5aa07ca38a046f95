package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	googleauth "dossier-backend/internal/auth"
	"dossier-backend/internal/credentials"
	"dossier-backend/internal/documents"
	"dossier-backend/internal/export"
	"dossier-backend/internal/mailer"
	"dossier-backend/internal/procedures"
	"dossier-backend/internal/queue"
	"dossier-backend/internal/remote"
	"dossier-backend/internal/services/health"
	"dossier-backend/internal/shared/config"
	"dossier-backend/internal/shared/metrics"
	"dossier-backend/internal/shared/server"
	"dossier-backend/internal/shared/server/middleware"
	"dossier-backend/internal/shared/storage/db"
	localstore "dossier-backend/internal/shared/storage/object/local"
	s3store "dossier-backend/internal/shared/storage/object/s3"
	"dossier-backend/internal/shared/telemetry"
	"dossier-backend/internal/workerproc"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Registry       *prometheus.Registry
	ProceduresRepo procedures.Repo
	DocumentsRepo  documents.Repo
	CredentialRepo credentials.Repo
	Credentials    *credentials.Provider
	Fetcher        remote.Fetcher
	Mailer         mailer.Sender
	Queue          queue.Client
	ExportService  *export.Service
	ExportHandler  *export.Handler
	GoogleAuth     *googleauth.GoogleService
	Health         *health.Service
	EmailProcessor *workerproc.Processor
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	fetcher, err := buildFetcher(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sender, err := buildMailer(cfg)
	if err != nil {
		return nil, err
	}

	var jobs queue.Client
	if cfg.ExportQueueURL != "" {
		sqsClient, err := queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.ExportQueueURL)
		if err != nil {
			return nil, err
		}
		jobs = sqsClient
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Registry: registry,
		Fetcher:  fetcher,
		Mailer:   sender,
		Queue:    jobs,
		Health:   health.NewService(sqlDB),
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        app.Config,
		Health:        app.Health,
		ExportHandler: app.ExportHandler,
		GoogleAuth:    app.GoogleAuth,
		Credentials:   app.CredentialRepo,
		Gatherer:      app.Registry,
		RateLimiter:   middleware.NewRateLimiter(nil),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "database connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildFetcher(ctx context.Context, cfg config.Config) (remote.Fetcher, error) {
	switch cfg.RemoteStore {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, err
		}
		return &remote.StoreFetcher{Store: store}, nil
	case "local":
		return &remote.StoreFetcher{Store: localstore.New(cfg.LocalStoreDir)}, nil
	default:
		return &remote.DriveFetcher{}, nil
	}
}

func buildMailer(cfg config.Config) (mailer.Sender, error) {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		telemetry.Warn("bootstrap.mail_logging_only", map[string]any{"reason": "SMTP_HOST empty"})
		return mailer.LogSender{}, nil
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}

func buildServices(app *App) {
	cfg := app.Config
	if app.DB != nil {
		app.ProceduresRepo = &procedures.PGRepo{DB: app.DB}
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.CredentialRepo = &credentials.PGRepo{DB: app.DB}
	} else {
		app.ProceduresRepo = procedures.NewMemoryRepo()
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.CredentialRepo = credentials.NewMemoryRepo()
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{drive.DriveReadonlyScope},
		Endpoint:     google.Endpoint,
	}
	app.Credentials = &credentials.Provider{Repo: app.CredentialRepo, OAuth: oauthCfg}

	app.ExportService = &export.Service{
		Procedures:  app.ProceduresRepo,
		Documents:   app.DocumentsRepo,
		Credentials: app.Credentials,
		Fetcher:     app.Fetcher,
		Metrics:     metrics.NewExportMetrics(app.Registry),
		Limits: export.Limits{
			MaxFileBytes:    cfg.Export.MaxFileBytes,
			MaxArchiveBytes: cfg.Export.MaxArchiveBytes,
			FetchTimeout:    cfg.Export.FetchTimeout,
			FetchInterval:   cfg.Export.FetchInterval,
		},
	}
	app.ExportHandler = export.NewHandler(app.ExportService, app.Mailer)
	app.ExportHandler.Queue = app.Queue
	app.EmailProcessor = &workerproc.Processor{Exporter: app.ExportService, Mailer: app.Mailer}
	app.GoogleAuth = googleauth.NewGoogleService(oauthCfg, app.CredentialRepo, cfg.UIRedirectURL)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
