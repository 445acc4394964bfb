// Package config reads environment variables (optionally seeded from a .env
// file) and exposes them as typed values for the three fujao binaries.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration. The client, server and worker share one
// struct; each binary only reads the fields it cares about.
type Config struct {
	// Client side.
	APIBaseURL      string
	StateDir        string
	LocationCommand string
	CameraCommand   string
	FixedLatitude   *float64
	FixedLongitude  *float64

	// Server side.
	Address     string
	DatabaseURL string

	// Worker queue.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	WorkerCount   int

	// Photo archive.
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
	S3Region    string
	PhotoBucket string

	LogLevel string
}

const (
	defaultAPIBaseURL  = "http://localhost:8080"
	defaultAddress     = ":8080"
	defaultPhotoBucket = "fujao-fotos"
	defaultWorkerCount = 2
	defaultLogLevel    = "info"
)

// Load reads configuration from the environment, falling back to defaults.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:      readEnv("FUJAO_API_URL", defaultAPIBaseURL),
		StateDir:        readEnv("FUJAO_STATE_DIR", defaultStateDir()),
		LocationCommand: readEnv("FUJAO_LOCATION_CMD", ""),
		CameraCommand:   readEnv("FUJAO_CAMERA_CMD", ""),
		FixedLatitude:   parseFloat("FUJAO_LATITUDE"),
		FixedLongitude:  parseFloat("FUJAO_LONGITUDE"),
		Address:         readEnv("FUJAO_ADDRESS", defaultAddress),
		DatabaseURL:     readEnv("DATABASE_URL", ""),
		RedisAddr:       readEnv("FUJAO_REDIS_ADDR", ""),
		RedisPassword:   readEnv("FUJAO_REDIS_PASSWORD", ""),
		RedisDB:         parseInt("FUJAO_REDIS_DB", 0),
		WorkerCount:     parseInt("FUJAO_WORKERS", defaultWorkerCount),
		S3Endpoint:      readEnv("FUJAO_S3_ENDPOINT", ""),
		S3AccessKey:     readEnv("FUJAO_S3_ACCESS_KEY", ""),
		S3SecretKey:     readEnv("FUJAO_S3_SECRET_KEY", ""),
		S3UseSSL:        parseBool("FUJAO_S3_USE_SSL", false),
		S3Region:        readEnv("FUJAO_S3_REGION", "us-east-1"),
		PhotoBucket:     readEnv("FUJAO_FOTOS_BUCKET", defaultPhotoBucket),
		LogLevel:        readEnv("FUJAO_LOG", defaultLogLevel),
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaultWorkerCount
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return cfg, nil
}

// StatePath returns the path of a file inside the local state directory.
func (c *Config) StatePath(name string) string {
	return filepath.Join(c.StateDir, name)
}

func defaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".fujao"
	}
	return filepath.Join(base, "fujao")
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseFloat(key string) *float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return &parsed
		}
	}
	return nil
}
