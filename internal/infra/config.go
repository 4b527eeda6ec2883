package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Renderer      string // "chromium" or "html"
	RenderTimeout time.Duration
	JobStatusTTL  time.Duration
	ArtifactTTL   time.Duration

	WorkerCount   int
	QueueCapacity int

	ArchivePath   string
	WarmSpec      string
	DefaultLocale string
	GeoIPDBPath   string

	CORSAllowedOrigins []string
	RateLimitPerMin    int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		Renderer:      getEnv("REPORT_RENDERER", "chromium"),
		RenderTimeout: time.Second * time.Duration(getEnvInt("REPORT_RENDER_TIMEOUT_SECONDS", 60)),
		JobStatusTTL:  time.Minute * time.Duration(getEnvInt("REPORT_JOB_TTL_MINUTES", 60)),
		ArtifactTTL:   time.Hour * time.Duration(getEnvInt("REPORT_ARTIFACT_TTL_HOURS", 24)),

		WorkerCount:   getEnvInt("REPORT_WORKERS", 4),
		QueueCapacity: getEnvInt("REPORT_QUEUE_CAPACITY", 128),

		ArchivePath:   os.Getenv("REPORT_ARCHIVE_PATH"),
		WarmSpec:      getEnv("REPORT_WARM_SPEC", "0 2 * * *"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}

	switch cfg.Renderer {
	case "chromium", "html":
	default:
		return nil, fmt.Errorf("REPORT_RENDERER must be chromium or html, got %q", cfg.Renderer)
	}

	if cfg.RedisAddr == "" && cfg.AppEnv != "development" {
		return nil, fmt.Errorf("REDIS_ADDR is required outside development")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
