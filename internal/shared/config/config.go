package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration.
type Config struct {
	Port               string        `envconfig:"PORT" default:"8080"`
	CORSAllowOrigin    []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:5173"`
	Env                string        `envconfig:"ENV" default:"dev"`
	DatabaseURL        string        `envconfig:"DATABASE_URL"`
	JWTSecret          string        `envconfig:"JWT_SECRET"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat          string        `envconfig:"LOG_FORMAT" default:"json"`
	GoogleClientID     string        `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string        `envconfig:"GOOGLE_REDIRECT_URL"`
	UIRedirectURL      string        `envconfig:"UI_REDIRECT_URL"`
	RemoteStore        string        `envconfig:"REMOTE_STORE" default:"drive"`
	LocalStoreDir      string        `envconfig:"LOCAL_STORE_DIR" default:"./data"`
	AWSRegion          string        `envconfig:"AWS_REGION"`
	S3Bucket           string        `envconfig:"S3_BUCKET"`
	S3Prefix           string        `envconfig:"S3_PREFIX"`
	SMTPHost           string        `envconfig:"SMTP_HOST"`
	SMTPPort           int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername       string        `envconfig:"SMTP_USERNAME"`
	SMTPPassword       string        `envconfig:"SMTP_PASSWORD"`
	MailFrom           string        `envconfig:"MAIL_FROM" default:"no-reply@localhost"`
	ExportQueueURL     string        `envconfig:"EXPORT_QUEUE_URL"`
	Export             ExportConfig
	Worker             WorkerConfig
}

// WorkerConfig tunes the export email worker.
type WorkerConfig struct {
	Concurrency       int           `envconfig:"WORKER_CONCURRENCY" default:"4"`
	VisibilitySeconds int32         `envconfig:"WORKER_VISIBILITY_TIMEOUT_SECONDS" default:"600"`
	ShutdownTimeout   time.Duration `envconfig:"WORKER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// ExportConfig bounds a single procedure export.
type ExportConfig struct {
	MaxFileBytes    int64         `envconfig:"EXPORT_MAX_FILE_BYTES" default:"52428800"`
	MaxArchiveBytes int64         `envconfig:"EXPORT_MAX_ARCHIVE_BYTES" default:"524288000"`
	FetchTimeout    time.Duration `envconfig:"EXPORT_FETCH_TIMEOUT" default:"60s"`
	FetchInterval   time.Duration `envconfig:"EXPORT_FETCH_INTERVAL" default:"100ms"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Printf("config: %v; falling back to defaults where possible", err)
	}
	return Normalize(cfg)
}

// Normalize canonicalizes enum-like fields.
func Normalize(cfg Config) Config {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.RemoteStore = normalizeStoreType(cfg.RemoteStore)
	cfg.CORSAllowOrigin = splitAndTrim(cfg.CORSAllowOrigin)
	cfg.ExportQueueURL = strings.TrimSpace(cfg.ExportQueueURL)
	if cfg.Worker.Concurrency < 1 {
		cfg.Worker.Concurrency = 1
	}
	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "production" && cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}
	return cfg
}

func splitAndTrim(raw []string) []string {
	var out []string
	for _, p := range raw {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "local":
		return "local"
	default:
		return "drive"
	}
}
