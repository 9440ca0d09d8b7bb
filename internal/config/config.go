package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string // empty = in-memory repositories (dev only)
	TablePrefix string
	CORSOrigins string

	// Auth
	JWKSURL     string // empty in dev = fixed dev principal
	DevUserID   string
	DevUserRole string
	RoleClaim   string // key under app_metadata holding the portal role

	// Blob storage
	BlobBackend  string // memory | local | s3
	BlobLocalDir string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string // custom endpoint (MinIO); empty = AWS
	S3AccessKey  string
	S3SecretKey  string
	S3Prefix     string

	MaxUploadBytes int64

	// Logging
	LogDir      string // empty = stdout only
	LogMaxFiles int
	SentryDSN   string
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: getTablePrefix(env),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		JWKSURL:     getEnv("JWKS_URL", ""),
		DevUserID:   getEnv("AUTH_DEV_USER_ID", "00000000-0000-0000-0000-000000000001"),
		DevUserRole: getEnv("AUTH_DEV_ROLE", "admin"),
		RoleClaim:   getEnv("AUTH_ROLE_CLAIM", "role"),

		BlobBackend:  getEnv("BLOB_BACKEND", getDefaultBlobBackend(env)),
		BlobLocalDir: getEnv("BLOB_LOCAL_DIR", "./data/blobs"),
		S3Bucket:     getEnv("S3_BUCKET", ""),
		S3Region:     getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),
		S3AccessKey:  getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:  getEnv("S3_SECRET_KEY", ""),
		S3Prefix:     getEnv("S3_PREFIX", "documents/"),

		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: int(getEnvInt64("LOG_MAX_FILES", 10)),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
	}
}

// IsDev reports whether dev-only conveniences (memory repos, dev principal) are allowed
func (c *Config) IsDev() bool {
	return c.Environment == "dev" || c.Environment == "test"
}

// AllowedOrigins splits CORS_ORIGINS on commas
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// getDefaultBlobBackend keeps uploads on disk in dev and in S3 elsewhere
func getDefaultBlobBackend(env string) string {
	switch env {
	case "prod":
		return "s3"
	case "test":
		return "memory"
	default:
		return "local"
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	case "dev":
		return "dev_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
