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

	"github.com/Dan9191/task-service/internal/auth"
	"github.com/Dan9191/task-service/internal/config"
	"github.com/Dan9191/task-service/internal/handler"
	"github.com/Dan9191/task-service/internal/middleware"
	"github.com/Dan9191/task-service/internal/ratelimit"
	"github.com/Dan9191/task-service/internal/reminder"
	"github.com/Dan9191/task-service/internal/repository"
	"github.com/Dan9191/task-service/internal/service"
	"github.com/Dan9191/task-service/internal/utils/email"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(cfg.Level())

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	repo, err := repository.Open(openCtx, cfg.DBDriver, cfg.DBConn)
	cancel()
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	// Initialize layers
	tokens, err := auth.NewTokenService(cfg.Secret(), cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("Failed to initialize token service: %v", err)
	}
	creds := auth.NewCredentials(repo, cfg.BcryptCost)
	svc := service.NewService(creds, tokens, repo, logger, cfg.EnforceOwnership)
	h := handler.NewHandler(svc, repo, logger)

	var limiter middleware.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warnf("Redis unavailable, rate limiting fails open: %v", err)
		}
		cancel()
		limiter = ratelimit.NewLimiter(rdb, "", cfg.RateLimitRate, cfg.RateLimitBurst)
	}

	if cfg.RemindersEnabled() {
		sender := email.NewSender(cfg, logger)
		rem := reminder.NewReminder(repo, sender, cfg.ReminderTo, cfg.ReminderSkipStatuses, logger)
		if err := rem.Start(cfg.ReminderCron); err != nil {
			logger.Fatalf("Failed to schedule reminders: %v", err)
		}
		defer rem.Stop()
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      h.Router(limiter, proxies, cfg.CORSOrigin),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Errorf("Server failed: %v", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
}
