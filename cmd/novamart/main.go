package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/novamart/novamart/internal/app"
	"github.com/novamart/novamart/internal/auth"
	"github.com/novamart/novamart/internal/catalog/products"
	"github.com/novamart/novamart/internal/fulfillment"
	"github.com/novamart/novamart/internal/inventory"
	"github.com/novamart/novamart/internal/observability"
	"github.com/novamart/novamart/internal/orders"
	"github.com/novamart/novamart/internal/platform/cache"
	"github.com/novamart/novamart/internal/platform/db"
	"github.com/novamart/novamart/internal/rbac"
	"github.com/novamart/novamart/internal/roles"
	"github.com/novamart/novamart/internal/shared"
	"github.com/novamart/novamart/internal/users"
	"github.com/novamart/novamart/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "novamart_session", cfg.SessionTTL, cfg.IsProduction())
	auditLogger := shared.NewAuditLogger(pool)
	metrics := observability.NewMetrics()

	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo)

	gate := rbac.NewGate(rbac.RegistryFunc(func(ctx context.Context, roleID int64) (rbac.RoleView, error) {
		role, err := rolesService.Resolve(ctx, roleID)
		if err != nil {
			return nil, err
		}
		return role, nil
	}))
	rbacMiddleware := rbac.Middleware{Gate: gate, Logger: logger}

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, rolesService)

	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo, inventory.NewLedger(pool))

	notifier, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := notifier.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	fulfillmentService := fulfillment.NewService(fulfillment.Config{
		Orders:  orders.NewRepository(pool),
		Catalog: productsService,
		Numbers: orders.NewNumberGenerator(redisClient),
		Gate:    gate,
		Pricing: orders.Pricing{
			TaxRate:               cfg.TaxRate,
			ShippingFlatRate:      cfg.ShippingFlatRate,
			FreeShippingThreshold: cfg.FreeShippingThreshold,
		},
		Notify:  notifier,
		Audit:   auditLogger,
		Metrics: metrics,
		Logger:  logger,
	})

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		PrincipalLoader: auth.PrincipalLoader{Users: usersService, Logger: logger},
		AuthHandler:     auth.NewHandler(logger, usersService, sessionManager),
		OrdersHandler:   fulfillment.NewHandler(logger, fulfillmentService, rbacMiddleware),
		ProductsHandler: products.NewHandler(logger, productsService, rbacMiddleware),
		RolesHandler:    roles.NewHandler(logger, rolesService, rbacMiddleware),
		UsersHandler:    users.NewHandler(logger, usersService, rbacMiddleware),
		JobsHandler:     jobs.NewHandler(inspector, logger),
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
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
