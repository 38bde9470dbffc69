package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/ledger-console/internal/accounting/accounts"
	"github.com/odyssey-erp/ledger-console/internal/app"
	"github.com/odyssey-erp/ledger-console/internal/auth"
	authhttp "github.com/odyssey-erp/ledger-console/internal/auth/http"
	"github.com/odyssey-erp/ledger-console/internal/observability"
	"github.com/odyssey-erp/ledger-console/internal/platform/backend"
	"github.com/odyssey-erp/ledger-console/internal/platform/cache"
	"github.com/odyssey-erp/ledger-console/internal/platform/db"
	"github.com/odyssey-erp/ledger-console/internal/rbac"
	"github.com/odyssey-erp/ledger-console/internal/roles"
	"github.com/odyssey-erp/ledger-console/internal/session"
	"github.com/odyssey-erp/ledger-console/internal/shared"
	"github.com/odyssey-erp/ledger-console/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.Open(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var pool *pgxpool.Pool
	if cfg.TokenStore == app.TokenStorePostgres {
		pool, err = db.Open(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		if err := session.EnsureTokenSchema(ctx, pool); err != nil {
			logger.Error("token schema", slog.Any("error", err))
			os.Exit(1)
		}
	}

	metrics := observability.NewMetrics()
	backendClient := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	authGateway := auth.NewGateway(backendClient)

	registry := session.NewRegistry(authGateway, storeFactory(cfg, redisClient, pool), logger, metrics)
	searches := accounts.NewSearches(cfg.SearchDebounce)
	registry.OnRelease(searches.Close)
	go pruneManagers(ctx, registry, cfg.ManagerIdleTTL, logger)

	sessionManager := shared.NewSessionManager(redisClient, "console_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	rbacMiddleware := rbac.Middleware{Logger: logger}

	accountsService := accounts.NewService(accounts.NewGateway(backendClient))
	usersService := users.NewService(users.NewGateway(backendClient))
	rolesService := roles.NewService(roles.NewGateway(backendClient))

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		Registry:        registry,
		CSRFManager:     csrfManager,
		AuthHandler:     authhttp.NewHandler(logger, authGateway, registry, sessionManager),
		AccountsHandler: accounts.NewHandler(logger, accountsService, rbacMiddleware, searches),
		RolesHandler:    roles.NewHandler(logger, rolesService, rbacMiddleware),
		UsersHandler:    users.NewHandler(logger, usersService, rbacMiddleware),
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("backend", cfg.BackendURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func storeFactory(cfg *app.Config, rdb *redis.Client, pool *pgxpool.Pool) session.StoreFactory {
	return func(scope string) (session.TokenStore, session.PermissionCache) {
		perms := session.NewRedisPermissionCache(rdb, scope, cfg.PermissionCacheTTL)
		switch cfg.TokenStore {
		case app.TokenStorePostgres:
			return session.NewPGTokenStore(pool, scope), perms
		case app.TokenStoreMemory:
			return session.NewMemoryTokenStore(), session.NewMemoryPermissionCache(cfg.PermissionCacheTTL)
		default:
			return session.NewRedisTokenStore(rdb, scope), perms
		}
	}
}

func pruneManagers(ctx context.Context, registry *session.Registry, idle time.Duration, logger *slog.Logger) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := registry.Prune(idle); n > 0 {
				logger.Debug("pruned idle session managers", slog.Int("count", n))
			}
		}
	}
}
