package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/task-manager/backend/internal/account"
	"github.com/ayush/task-manager/backend/internal/auth"
	"github.com/ayush/task-manager/backend/internal/config"
	"github.com/ayush/task-manager/backend/internal/middleware"
	"github.com/ayush/task-manager/backend/internal/render"
	"github.com/ayush/task-manager/backend/internal/store"
	"github.com/ayush/task-manager/backend/internal/tasks"
	"github.com/ayush/task-manager/backend/internal/team"
)

func setupSlog(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func main() {
	cfg := config.Load()
	logger := setupSlog(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		slog.Error("server_exited", "error", err)
		os.Exit(1)
	}
}

// run owns every connection it opens; returning unwinds them in reverse order.
func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	if cfg.TeamSecret == "" {
		slog.Warn("jwt_secret_missing", "detail", "JWT_SECRET_KEY is empty; token issuance will fail")
	}

	// Shared in-memory fallback for whichever databases are not configured.
	mem := store.NewMemory()

	// ── MongoDB (team board) ─────────────────────────────────
	var teamStore team.Store = mem
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return fmt.Errorf("mongo connect: %w", err)
		}
		defer mongoClient.Disconnect(context.Background())
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = mongoClient.Ping(pingCtx, nil)
		cancel()
		if err != nil {
			return fmt.Errorf("mongo ping: %w", err)
		}
		mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}
		teamStore = mongoStore
		slog.Info("mongo_connected", "database", cfg.MongoDB)
	} else {
		slog.Warn("mongo_not_configured", "detail", "team board uses in-memory storage")
	}

	// ── PostgreSQL (personal task list) ──────────────────────
	var taskStore tasks.Store = mem
	var profileStore account.ProfileStore = mem
	if cfg.PostgresDSN != "" {
		pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("postgres connect: %w", err)
		}
		defer pgPool.Close()
		pgStore := store.NewPostgresStore(pgPool)
		if err := pgStore.Migrate(ctx); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
		taskStore, profileStore = pgStore, pgStore
		slog.Info("postgres_connected")
	} else {
		slog.Warn("postgres_not_configured", "detail", "task list uses in-memory storage")
	}

	// ── Redis (login throttling) ─────────────────────────────
	var teamGuard, tasksGuard auth.LoginGuard = auth.NoopGuard{}, auth.NoopGuard{}
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer rdb.Close()
		teamGuard = newThrottle(rdb, "team", cfg)
		tasksGuard = newThrottle(rdb, "tasks", cfg)
		slog.Info("redis_connected", "addr", cfg.RedisAddr)
	} else {
		slog.Warn("redis_not_configured", "detail", "login throttling disabled")
	}

	// ── MinIO (avatars) ──────────────────────────────────────
	var files account.FileStore
	if cfg.MinioEndpoint != "" {
		objects, err := store.NewObjectStore(
			ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio connect: %w", err)
		}
		files = objects
		slog.Info("minio_connected", "bucket", cfg.MinioBucket)
	} else {
		slog.Warn("minio_not_configured", "detail", "avatar uploads disabled")
	}

	// ── Tokens ───────────────────────────────────────────────
	teamTokens := auth.NewIssuer(cfg.TeamSecret, auth.AudienceTeam, cfg.TokenTTL)
	tasksTokens := auth.NewIssuer(cfg.TasksSecret, auth.AudienceTasks, cfg.TokenTTL)

	// ── Handlers ─────────────────────────────────────────────
	teamHandler := team.NewHandler(team.NewService(teamStore, teamTokens, teamGuard))
	taskHandler := tasks.NewHandler(tasks.NewService(taskStore))
	accountHandler := account.NewHandler(account.NewService(profileStore, files, tasksTokens, tasksGuard))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				limiter.Sweep()
			}
		}
	}()

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	teamHandler.Mount(r, teamTokens, limiter.Handler)
	taskHandler.Mount(r, tasksTokens)
	accountHandler.Mount(r, tasksTokens, limiter.Handler)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server_listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-quit:
	}

	slog.Info("server_shutting_down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newThrottle(rdb *redis.Client, prefix string, cfg *config.Config) auth.LoginGuard {
	return auth.NewThrottle(rdb, prefix, cfg.LoginMaxAttempts, cfg.LoginLockout)
}
