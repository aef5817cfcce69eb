package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port string

	MongoURI    string
	MongoDB     string
	PostgresDSN string

	RedisAddr     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// TeamSecret signs team-board tokens, TasksSecret signs personal-app tokens.
	TeamSecret  string
	TasksSecret string
	// TokenTTL of zero issues tokens without an exp claim.
	TokenTTL time.Duration

	CORSOrigins []string

	LoginMaxAttempts int
	LoginLockout     time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel slog.Level
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("dotenv_load_failed", "error", err)
	}

	teamSecret := getenv("JWT_SECRET_KEY", "")
	return &Config{
		Port:             getenv("PORT", "8080"),
		MongoURI:         getenv("MONGO_URI", ""),
		MongoDB:          getenv("MONGO_DB", "task-management"),
		PostgresDSN:      getenv("POSTGRES_DSN", ""),
		RedisAddr:        getenv("REDIS_ADDR", ""),
		RedisPassword:    getenv("REDIS_PASSWORD", ""),
		MinioEndpoint:    getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey:   getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:   getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:      getenv("MINIO_BUCKET", "avatars"),
		MinioUseSSL:      getenv("MINIO_USE_SSL", "false") == "true",
		TeamSecret:       teamSecret,
		TasksSecret:      getenv("TASKS_JWT_SECRET", teamSecret),
		TokenTTL:         getduration("TOKEN_TTL", 0),
		CORSOrigins:      splitList(getenv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		LoginMaxAttempts: getint("LOGIN_MAX_ATTEMPTS", 5),
		LoginLockout:     getduration("LOGIN_LOCKOUT", 15*time.Minute),
		RateLimitRPS:     getfloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:   getint("RATE_LIMIT_BURST", 10),
		LogLevel:         parseLevel(getenv("LOG_LEVEL", "info")),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	n, err := strconv.Atoi(getenv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getfloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(getenv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getduration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getenv(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
