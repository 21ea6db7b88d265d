package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/example/aadhaar-check/internal/aadhaar"
	"github.com/example/aadhaar-check/internal/auth"
	"github.com/example/aadhaar-check/internal/config"
	"github.com/example/aadhaar-check/internal/handlers"
	"github.com/example/aadhaar-check/internal/healthcheck"
	"github.com/example/aadhaar-check/internal/imageprocessor"
	"github.com/example/aadhaar-check/internal/logging"
	"github.com/example/aadhaar-check/internal/ocr"
	"github.com/example/aadhaar-check/internal/uploads"
	"github.com/example/aadhaar-check/internal/usecase"
)

func main() {
	cfg, cfgErr := config.Load()

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfgErr != nil {
		logger.Warn("falling back to defaults for invalid settings", zap.Error(cfgErr))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if _, err := os.Stat(cfg.LogoPath); err != nil {
		logger.Warn("reference logo not readable, logo stage will fail", zap.String("path", cfg.LogoPath), zap.Error(err))
	}

	engine, closeEngine, err := ocr.NewEngine(ctx, cfg.OCREngine, cfg.OCRLanguages)
	if err != nil {
		logger.Fatal("failed to initialise ocr engine", zap.String("engine", cfg.OCREngine), zap.Error(err))
	}
	defer func() {
		if err := closeEngine(); err != nil {
			logger.Warn("failed to close ocr engine", zap.Error(err))
		}
	}()
	logger.Info("ocr engine ready", zap.String("engine", engine.Name()))

	pipeline := aadhaar.NewPipeline(
		imageprocessor.NewQRDecoder(logger),
		imageprocessor.NewLogoMatcher(logger),
		ocr.NewTextExtractor(engine, logger),
		logger,
		aadhaar.WithLogoThreshold(cfg.LogoMatchThreshold),
	)

	store, err := uploads.NewStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal("failed to prepare upload directory", zap.String("dir", cfg.UploadDir), zap.Error(err))
	}

	// A nil interface disables caching; never pass a typed nil client.
	var cache usecase.Cache
	if cfg.RedisAddr != "" {
		redisCtx, redisCancel := context.WithTimeout(ctx, 5*time.Second)
		redisClient := initRedis(redisCtx, cfg.RedisAddr, logger)
		redisCancel()
		defer redisClient.Close()
		cache = usecase.NewRedisCache(redisClient)
	}

	uc := usecase.NewVerificationUseCase(pipeline, store, cache, cfg.LogoPath, cfg.CacheTTL, logger)

	r := gin.Default()
	r.MaxMultipartMemory = handlers.MaxUploadSize
	handlers.RegisterRoutes(r, uc, auth.Middleware(cfg.JWTSecret, cfg.JWTAudience))
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, verify endpoint is unauthenticated")
	}

	var healthSrv *healthcheck.Server
	if cfg.GRPCHealthAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCHealthAddr)
		if err != nil {
			logger.Fatal("failed to listen for grpc health", zap.String("addr", cfg.GRPCHealthAddr), zap.Error(err))
		}
		healthSrv = healthcheck.NewServer(logger)
		go func() {
			if err := healthSrv.Serve(lis); err != nil {
				op, _ := logging.OperationOf(err)
				logger.Error("grpc health server failed", zap.String("operation", op), zap.Error(err))
			}
		}()
		healthSrv.MarkServing()
		defer healthSrv.Stop()
	}

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	logger.Info("Aadhaar verification API listening", zap.String("addr", cfg.HTTPAddr))
	onShutdown := func() {
		if healthSrv != nil {
			healthSrv.MarkNotServing()
		}
	}
	if err := serveHTTPServerWithOptions(server, cfg.ShutdownTimeout, logger, nil, nil, onShutdown); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func initRedis(ctx context.Context, addr string, zapLogger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		zapLogger.Fatal("redis connection failed", zap.String("addr", addr), zap.Error(err))
	}
	return client
}

// serveHTTPServerWithOptions serves until the server fails or a shutdown
// signal arrives. A nil listener uses server.Addr and a nil signalCh
// subscribes to SIGINT and SIGTERM. onShutdown runs before draining.
func serveHTTPServerWithOptions(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger, listener net.Listener, signalCh <-chan os.Signal, onShutdown func()) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if listener != nil {
			err = server.Serve(listener)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	var (
		sigCh       <-chan os.Signal
		stopSignals func()
	)

	if signalCh != nil {
		sigCh = signalCh
		stopSignals = func() {}
	} else {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		sigCh = ch
		stopSignals = func() {
			signal.Stop(ch)
		}
	}
	defer stopSignals()

	select {
	case err := <-errCh:
		return err
	case sig, ok := <-sigCh:
		if !ok {
			return <-errCh
		}
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		if onShutdown != nil {
			onShutdown()
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-errCh
	}
}
