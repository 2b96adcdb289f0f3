// Command pixology-server starts the Pixology project API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pixology/pixology-server/internal/config"
	"github.com/pixology/pixology-server/internal/crypto"
	"github.com/pixology/pixology-server/internal/limiter"
	"github.com/pixology/pixology-server/internal/migrate"
	"github.com/pixology/pixology-server/internal/repository"
	"github.com/pixology/pixology-server/internal/repository/memory"
	"github.com/pixology/pixology-server/internal/repository/postgres"
	"github.com/pixology/pixology-server/internal/server/httpapi"
	"github.com/pixology/pixology-server/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and starts the HTTP server.
func main() {
	cfg, err := config.Load(".env", ".env.local")
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	// Flags override the environment.
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flag.StringVar(&cfg.Store, "store", cfg.Store, "project store: postgres|memory")
	flag.StringVar(&cfg.DSN, "dsn", cfg.DSN, "PostgreSQL DSN")
	flag.StringVar(&cfg.AuthMode, "auth-mode", cfg.AuthMode, "owner resolution: open|jwt")
	flag.StringVar(&cfg.JWTKey, "jwt-key", cfg.JWTKey, "HS256 signing key")
	flag.DurationVar(&cfg.AccessTTL, "access-ttl", cfg.AccessTTL, "access token TTL")
	flag.StringVar(&cfg.Limiter, "limiter", cfg.Limiter, "login limiter: postgres|redis|memory")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for the limiter")
	flag.BoolVar(&cfg.Dev, "dev", cfg.Dev, "development logging and gin debug mode")
	flag.Parse()

	var logger *zap.Logger
	if cfg.Dev {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
		gin.SetMode(gin.ReleaseMode)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.Store),
		zap.String("authMode", cfg.AuthMode),
		zap.String("limiter", cfg.Limiter),
	)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.AuthMode == config.AuthOpen {
		logger.Warn("open auth mode: the userId query parameter is trusted as the owner")
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories
	var (
		users    repository.UserRepository
		projects repository.ProjectRepository
		db       *postgres.DB
	)
	switch cfg.Store {
	case config.StorePostgres:
		if err := migrate.Up(ctx, cfg.DSN, logger); err != nil {
			logger.Fatal("migrate up", zap.Error(err))
		}
		db, err = postgres.New(ctx, cfg.DSN, cfg.DBMaxConns)
		if err != nil {
			logger.Fatal("postgres connect", zap.Error(err))
		}
		defer db.Close()
		users = postgres.NewUserRepo(db)
		projects = postgres.NewProjectRepo(db)
	case config.StoreMemory:
		users = memory.NewUserStore()
		projects = memory.NewProjectStore()
	}

	// Login limiter
	policy := limiter.Policy{Window: cfg.LimitWindow, MaxFails: cfg.LimitMaxFails, BlockFor: cfg.LimitBlockFor}
	var (
		lim    limiter.Limiter
		checks = map[string]func(context.Context) error{}
	)
	if db != nil {
		checks["postgres"] = db.Ping
	}
	switch cfg.Limiter {
	case config.LimiterPostgres:
		lim = limiter.NewPG(db.Pool, policy)
	case config.LimiterRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("redis ping", zap.Error(err))
		}
		lim = limiter.NewRedis(rdb, policy)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	case config.LimiterMemory:
		lim = limiter.NewMemory(nil, policy)
	}

	// Services
	signKey := []byte(cfg.JWTKey)
	if len(signKey) == 0 {
		// open mode without a key: tokens are only valid for this process
		if signKey, err = crypto.RandBytes(32); err != nil {
			logger.Fatal("signing key", zap.Error(err))
		}
	}
	authSvc := service.NewAuthService(users, signKey, cfg.AccessTTL, lim)
	projectSvc := service.NewProjectService(projects, users, nil)

	var owner httpapi.OwnerResolver = httpapi.QueryOwner{}
	if cfg.AuthMode == config.AuthJWT {
		owner = httpapi.BearerOwner{SignKey: []byte(cfg.JWTKey)}
	}

	api := httpapi.New(authSvc, projectSvc, owner, httpapi.NewMetrics(), logger, cfg.CORSOrigins)
	for name, check := range checks {
		api.WithHealthCheck(name, check)
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		// graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("forced shutdown", zap.Error(err))
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
