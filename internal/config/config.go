package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service settings read from the environment.
type Config struct {
	HTTPAddr           string
	GRPCHealthAddr     string
	LogoPath           string
	UploadDir          string
	LogoMatchThreshold int
	OCREngine          string
	OCRLanguages       []string
	RedisAddr          string
	CacheTTL           time.Duration
	JWTSecret          string
	JWTAudience        string
	LogLevel           string
	ShutdownTimeout    time.Duration
}

// Load reads an optional .env file and then the environment. Malformed
// numeric or duration values keep their defaults and are reported in the
// returned error, so callers can log and continue.
func Load() (*Config, error) {
	var errs []error
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, fmt.Errorf("load .env: %w", err))
	}

	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		GRPCHealthAddr:  os.Getenv("GRPC_HEALTH_ADDR"),
		LogoPath:        getEnv("LOGO_PATH", "aadhaar_logo.png"),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		OCREngine:       getEnv("OCR_ENGINE", "tesseract"),
		OCRLanguages:    splitList(getEnv("OCR_LANGUAGES", "eng")),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTAudience:     strings.TrimSpace(os.Getenv("JWT_AUDIENCE")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CacheTTL:        10 * time.Minute,
		ShutdownTimeout: 15 * time.Second,
	}

	threshold, err := getInt("LOGO_MATCH_THRESHOLD", 15)
	errs = append(errs, err)
	cfg.LogoMatchThreshold = threshold

	ttl, err := getDuration("CACHE_TTL", cfg.CacheTTL)
	errs = append(errs, err)
	cfg.CacheTTL = ttl

	shutdown, err := getDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	errs = append(errs, err)
	cfg.ShutdownTimeout = shutdown

	return cfg, errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback, fmt.Errorf("%s: expected a positive integer, got %q", key, raw)
	}
	return value, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback, fmt.Errorf("%s: expected a positive duration, got %q", key, raw)
	}
	return value, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
