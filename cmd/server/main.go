package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kevin07696/monext-gateway/internal/adapters/lock"
	"github.com/kevin07696/monext-gateway/internal/adapters/monext"
	"github.com/kevin07696/monext-gateway/internal/adapters/postgres"
	"github.com/kevin07696/monext-gateway/internal/config"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	paymentHandler "github.com/kevin07696/monext-gateway/internal/handlers/payment"
	"github.com/kevin07696/monext-gateway/internal/services/lifecycle"
	paymentService "github.com/kevin07696/monext-gateway/internal/services/payment"
	"github.com/kevin07696/monext-gateway/pkg/middleware"
	"github.com/kevin07696/monext-gateway/pkg/observability"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logger)
	defer logger.Sync()

	logger.Info("Starting monext gateway service",
		zap.String("version", "0.1.0"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := postgres.NewDB(ctx, cfg.Database.ConnectionString(), cfg.Database.MaxConns, cfg.Database.MinConns, logger)
	cancel()
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Secret manager holds the Monext API key; the rest of the gateway
	// settings come straight from the environment.
	secretCtx, cancelSecret := context.WithTimeout(context.Background(), 10*time.Second)
	secretManager, err := initSecretManager(secretCtx, cfg, logger)
	if err != nil {
		cancelSecret()
		logger.Fatal("Failed to initialize secret manager", zap.Error(err))
	}
	apiKey, err := secretManager.GetSecret(secretCtx, cfg.Gateway.APIKeySecret)
	cancelSecret()
	if err != nil {
		logger.Fatal("Failed to resolve Monext API key", zap.Error(err))
	}

	gateway := monext.NewClientWithDefaults(monext.Config{
		BaseURL:         cfg.Gateway.BaseURL,
		APIKey:          apiKey,
		PointOfSale:     cfg.Gateway.PointOfSale,
		ContractNumbers: cfg.Gateway.ContractNumbers,
		CaptureMode:     cfg.Gateway.CaptureMode,
		ReturnURL:       cfg.Gateway.ReturnURL,
		NotificationURL: cfg.Gateway.NotificationURL,
	}, logger)

	refRepo := postgres.NewReferenceRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	var (
		locker      ports.Locker
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		locker = lock.NewRedisLocker(redisClient, cfg.Redis.LockRetryBackoff)
		logger.Info("Using Redis-backed payment lock", zap.String("addr", cfg.Redis.Addr))
	} else {
		locker = lock.NewMemoryLocker()
		logger.Info("Using in-process payment lock")
	}

	svc := paymentService.NewService(gateway, refRepo, paymentRepo, locker, logger)
	hooks := lifecycle.NewHooks(svc, paymentRepo, cfg.Gateway.CaptureTransitions, logger)

	// Shop-facing endpoints: the webhook Monext calls and the URL the buyer
	// lands on after the hosted checkout. Both are internet-reachable, so
	// they sit behind a per-IP rate limit.
	rateLimiter := middleware.NewRateLimiter(10, 20)
	defer rateLimiter.Shutdown()

	mux := http.NewServeMux()
	mux.Handle("/monext/notification", rateLimiter.Middleware(paymentHandler.NewNotificationHandler(gateway, refRepo, svc, logger)))
	mux.Handle("/monext/return", rateLimiter.Middleware(paymentHandler.NewReturnHandler(gateway, refRepo, svc, logger, cfg.Gateway.HomeURL, cfg.Gateway.ThankYouURL)))
	mux.Handle("/internal/orders/transition", paymentHandler.NewOrderTransitionHandler(hooks, paymentRepo, logger))
	mux.Handle("/internal/payments/sessions", paymentHandler.NewSessionHandler(svc, paymentRepo, logger))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: mux,
	}

	healthChecker := observability.NewHealthChecker(db.GetDB(), redisClient)
	metricsServer := observability.StartMetricsServer(strconv.Itoa(cfg.Server.MetricsPort), healthChecker, logger)

	go func() {
		logger.Info("HTTP server listening",
			zap.String("address", httpServer.Addr),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := observability.ShutdownMetricsServer(metricsServer); err != nil {
		logger.Error("Metrics server shutdown error", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Redis close error", zap.Error(err))
		}
	}

	logger.Info("Servers stopped")
}

// initLogger builds the process logger from the logging configuration.
func initLogger(cfg config.LoggerConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
		level = parsed
	}

	if cfg.Development {
		zapCfg := zap.NewDevelopmentConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(level)
		logger, _ := zapCfg.Build()
		return logger
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	logger, _ := zapCfg.Build()
	return logger
}
