package app

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/envutil"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/sendgrid"
)

type Config struct {
	Port            string `validate:"required,numeric"`
	ServiceName     string `validate:"required"`
	Environment     string
	ShutdownTimeout time.Duration `validate:"gt=0"`

	DBDriver   string `validate:"oneof=postgres sqlite"`
	SQLitePath string

	ScheduleTimezone string `validate:"required,timezone"`
	UnlockStrategy   string `validate:"oneof=exact catch_up"`

	JobsEnabled          bool
	UnlockInterval       time.Duration `validate:"gt=0"`
	DeadlineInterval     time.Duration `validate:"gt=0"`
	ReminderInterval     time.Duration `validate:"gt=0"`
	ReminderThrottleDays int           `validate:"gte=1"`
	LeaseBackend         string        `validate:"oneof=db redis"`
	LeaseTTL             time.Duration `validate:"gt=0"`

	WorkerConcurrency int `validate:"gte=1"`
	FanoutConcurrency int `validate:"gte=1"`
	JobMaxAttempts    int `validate:"gte=1"`

	RedisAddr     string `validate:"required_if=LeaseBackend redis"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	NotificationProvider   string `validate:"oneof=http sendgrid log"`
	NotificationServiceURL string `validate:"required_if=NotificationProvider http"`
	StudentServiceURL      string `validate:"required,url"`
	UpstreamTimeout        time.Duration `validate:"gt=0"`
	UpstreamMaxRetries     int           `validate:"gte=0"`
	SendGrid               sendgrid.Config

	GCSBucket        string
	GCSEmulatorHost  string
	GCSPublicBaseURL string
	SignedURLTTL     time.Duration `validate:"gt=0"`

	AuthJWTSecret string
	CORSOrigins   []string

	OtelEnabled     bool
	OtelEndpoint    string
	OtelHeaders     string
	OtelInsecure    bool
	OtelSampleRatio float64 `validate:"gte=0,lte=1"`

	MetricsEnabled bool
	MetricsAddr    string
}

// Location resolves ScheduleTimezone. LoadConfig has validated it already.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ScheduleTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfig reads the process environment, after merging an optional .env
// file, and validates the result.
func LoadConfig(log *logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file loaded", "error", err)
	}

	cfg := Config{
		Port:            envutil.String("PORT", "8080", log),
		ServiceName:     envutil.String("SERVICE_NAME", "task-service", log),
		Environment:     envutil.String("ENVIRONMENT", "development", log),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),

		DBDriver:   envutil.String("DB_DRIVER", "postgres", log),
		SQLitePath: envutil.String("SQLITE_PATH", "", log),

		ScheduleTimezone: envutil.String("SCHEDULE_TIMEZONE", "UTC", log),
		UnlockStrategy:   envutil.String("UNLOCK_STRATEGY", "exact", log),

		JobsEnabled:          envutil.Bool("JOBS_ENABLED", true),
		UnlockInterval:       envutil.Duration("UNLOCK_INTERVAL", 24*time.Hour),
		DeadlineInterval:     envutil.Duration("DEADLINE_INTERVAL", time.Hour),
		ReminderInterval:     envutil.Duration("REMINDER_INTERVAL", time.Hour),
		ReminderThrottleDays: envutil.Int("REMINDER_THROTTLE_DAYS", 3),
		LeaseBackend:         envutil.String("LEASE_BACKEND", "db", log),
		LeaseTTL:             envutil.Duration("LEASE_TTL", 10*time.Minute),

		WorkerConcurrency: envutil.Int("WORKER_CONCURRENCY", 2),
		FanoutConcurrency: envutil.Int("FANOUT_CONCURRENCY", 8),
		JobMaxAttempts:    envutil.Int("JOB_MAX_ATTEMPTS", 5),

		RedisAddr:     envutil.String("REDIS_ADDR", "", log),
		RedisPassword: envutil.String("REDIS_PASSWORD", "", nil),
		RedisDB:       envutil.Int("REDIS_DB", 0),

		NotificationProvider:   envutil.String("NOTIFICATION_PROVIDER", "http", log),
		NotificationServiceURL: envutil.String("NOTIFICATION_SERVICE_URL", "", log),
		StudentServiceURL:      envutil.String("STUDENT_SERVICE_URL", "", log),
		UpstreamTimeout:        envutil.Duration("UPSTREAM_TIMEOUT", 10*time.Second),
		UpstreamMaxRetries:     envutil.Int("UPSTREAM_MAX_RETRIES", 2),
		SendGrid:               sendgrid.ConfigFromEnv(),

		GCSBucket:        envutil.String("GCS_BUCKET", "", log),
		GCSEmulatorHost:  envutil.String("STORAGE_EMULATOR_HOST", "", log),
		GCSPublicBaseURL: envutil.String("GCS_PUBLIC_BASE_URL", "", log),
		SignedURLTTL:     envutil.Duration("SIGNED_URL_TTL", time.Hour),

		AuthJWTSecret: envutil.String("AUTH_JWT_SECRET", "", nil),
		CORSOrigins:   envutil.List("CORS_ALLOWED_ORIGINS"),

		OtelEnabled:     envutil.Bool("OTEL_ENABLED", false),
		OtelEndpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
		OtelHeaders:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", nil),
		OtelInsecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OtelSampleRatio: float64(envutil.Int("OTEL_SAMPLE_PERCENT", 100)) / 100,

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", false),
		MetricsAddr:    envutil.String("METRICS_ADDR", ":9090", log),
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
