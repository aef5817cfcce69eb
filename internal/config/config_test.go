package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "JWT_SECRET_KEY", "TASKS_JWT_SECRET", "TOKEN_TTL", "CORS_ORIGINS", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.TokenTTL != 0 {
		t.Errorf("TokenTTL = %v, want 0", cfg.TokenTTL)
	}
	if cfg.LoginMaxAttempts != 5 || cfg.LoginLockout != 15*time.Minute {
		t.Errorf("login throttle = %d/%v", cfg.LoginMaxAttempts, cfg.LoginLockout)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoad_TasksSecretFallsBackToTeamSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "shared")
	t.Setenv("TASKS_JWT_SECRET", "")

	cfg := Load()
	if cfg.TasksSecret != "shared" {
		t.Fatalf("TasksSecret = %q, want shared", cfg.TasksSecret)
	}

	t.Setenv("TASKS_JWT_SECRET", "own")
	if got := Load().TasksSecret; got != "own" {
		t.Fatalf("TasksSecret = %q, want own", got)
	}
}

func TestLoad_ParsesTypedValues(t *testing.T) {
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL = %v", cfg.TokenTTL)
	}
	if cfg.RateLimitRPS != 0.5 {
		t.Errorf("RateLimitRPS = %v", cfg.RateLimitRPS)
	}
	if cfg.LoginMaxAttempts != 5 {
		t.Errorf("LoginMaxAttempts = %d, want fallback 5", cfg.LoginMaxAttempts)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}
