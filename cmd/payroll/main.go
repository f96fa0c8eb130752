// Package main запускает HTTP-сервер сервиса учёта выплат фермы.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/farm-payroll/internal/cache"
	"github.com/mmeshcher/farm-payroll/internal/config"
	"github.com/mmeshcher/farm-payroll/internal/handler"
	"github.com/mmeshcher/farm-payroll/internal/identity"
	"github.com/mmeshcher/farm-payroll/internal/middleware"
	"github.com/mmeshcher/farm-payroll/internal/payroll"
	"github.com/mmeshcher/farm-payroll/internal/repository"
	"github.com/mmeshcher/farm-payroll/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI, logger)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	calc := payroll.NewCalculator(cfg.Rounding())
	opts := []service.Option{
		service.WithCalculator(calc),
	}

	if cfg.IdentityURL != "" {
		opts = append(opts, service.WithIdentityClient(identity.NewClient(cfg.IdentityURL, cfg.IdentityServiceKey)))
	} else {
		sugar.Warn("identity provider is not configured, accounts will only be removed locally")
	}

	if cfg.RedisAddr != "" {
		connectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.NewRedisCache(connectCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		cancel()
		if err != nil {
			sugar.Warnw("redis unavailable, list cache disabled", "addr", cfg.RedisAddr, "error", err.Error())
		} else {
			defer redisCache.Close()
			opts = append(opts, service.WithCache(redisCache))
		}
	}

	svc := service.NewService(repo, logger, opts...)
	defer svc.Close()

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)
	if cfg.JWTSecret == "" {
		sugar.Warn("JWT secret is not configured, issued sessions will not be accepted")
	}
	h := handler.NewHandler(svc, logger, authMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting payroll server", "addr", cfg.RunAddress, "rounding", calc.Mode().String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
