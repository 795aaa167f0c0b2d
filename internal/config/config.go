package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultMaxUploadBytes = 50 << 20 // 50 MiB

// Config holds every tunable the service needs. It is loaded once in main and
// injected at construction so nothing reads ambient state, and multiple
// configurations can coexist in one process (tests rely on this).
type Config struct {
	// Connections
	PostgresDSN string
	RedisAddr   string

	// Object storage
	S3Bucket       string
	S3Region       string
	S3Endpoint     string // optional, for MinIO/localstack
	SignedURLTTL   time.Duration
	MaxUploadBytes int64
	AllowedMimes   []string

	// Queue
	QueueKey      string
	ProcessingKey string

	// HTTP
	ListenAddr string

	// Worker
	Workers int

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables. POSTGRES_DSN and
// REDIS_ADDR have no sensible default and are required; S3_BUCKET is required
// for any binary that touches storage.
func Load() (Config, error) {
	cfg := Config{
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),

		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		SignedURLTTL:   getEnvDuration("SIGNED_URL_TTL", time.Hour),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		AllowedMimes:   getEnvList("ALLOWED_MIME_TYPES", defaultAllowedMimes()),

		QueueKey:      getEnv("REDIS_QUEUE_KEY", "documents:queue"),
		ProcessingKey: getEnv("REDIS_PROCESSING_KEY", "documents:processing"),

		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		Workers:    getEnvInt("WORKERS", 4),

		LogFile:  getEnv("LOG_FILE", ""),
		LogLevel: parseLogLevel(getEnv("LOG_LEVEL", "INFO")),
	}

	if cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("missing env: POSTGRES_DSN")
	}
	if cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("missing env: REDIS_ADDR")
	}
	if cfg.S3Bucket == "" {
		return Config{}, fmt.Errorf("missing env: S3_BUCKET")
	}

	return cfg, nil
}

func defaultAllowedMimes() []string {
	return []string{
		"application/pdf",
		"image/png",
		"image/jpeg",
		"image/tiff",
		"text/plain",
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
