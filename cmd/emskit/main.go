package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/emskit/emskit/internal/app"
	"github.com/emskit/emskit/internal/audit"
	"github.com/emskit/emskit/internal/authz"
	"github.com/emskit/emskit/internal/kits"
	"github.com/emskit/emskit/internal/platform/cache"
	"github.com/emskit/emskit/internal/platform/db"
	"github.com/emskit/emskit/internal/policies"
	"github.com/emskit/emskit/internal/roles"
	"github.com/emskit/emskit/internal/users"
)

func main() {
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// The engine degrades to local-only invalidation and a disabled
		// audit sink; permission checks keep working off Postgres.
		logger.Warn("redis unavailable", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	policyCache := authz.NewCache()
	invalidator := authz.NewInvalidator(redisClient, policyCache, logger)

	authzRepo := authz.NewRepository(pool)
	registry := authz.NewRoleRegistry(authzRepo, policyCache, logger)
	policyStore := authz.NewPolicyStore(authzRepo, policyCache, logger)
	engine := authz.NewEngine(registry, policyStore)
	authzMW := authz.Middleware{Engine: engine, Logger: logger}

	var sink *audit.Sink
	if redisClient != nil {
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() { _ = asynqClient.Close() }()
		sink = audit.NewSink(asynqClient, logger)
	} else {
		sink = audit.NewSink(nil, logger)
	}

	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo, invalidator)
	rolesHandler := roles.NewHandler(logger, rolesService, authzMW)

	policiesRepo := policies.NewRepository(pool)
	policiesService := policies.NewService(policiesRepo, rolesRepo, invalidator)
	policiesHandler := policies.NewHandler(logger, policiesService, authzMW)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, authzMW)

	kitsRepo := kits.NewRepository(pool)
	kitsService := kits.NewService(kitsRepo, engine, sink)
	kitsHandler := kits.NewHandler(logger, kitsService)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Pool:            pool,
		ActorMiddleware: users.ActorMiddleware(usersService, logger),
		RolesHandler:    rolesHandler,
		PoliciesHandler: policiesHandler,
		UsersHandler:    usersHandler,
		KitsHandler:     kitsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		err := invalidator.Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
