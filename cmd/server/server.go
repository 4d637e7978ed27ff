package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"ContactIntake/config"
	"ContactIntake/internal/handler"
	"ContactIntake/internal/middleware"
	"ContactIntake/internal/router"
	"ContactIntake/internal/service"
	"ContactIntake/pkg/captcha"
	"ContactIntake/pkg/logger"
	"ContactIntake/pkg/metrics"
	otelinit "ContactIntake/pkg/otel"
	"ContactIntake/pkg/sheets"
	"ContactIntake/pkg/snowflake"
	"ContactIntake/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger 依赖配置，此时只能用 hertz 默认日志
		hlog.Fatalf("Failed to load config: %v", err)
	}

	// 日志部分
	if err := logger.Init(cfg); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := snowflake.Init(cfg.NodeID); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	var (
		shutdownTelemetry otelinit.Shutdown
		meter             metric.Meter
		serverOpts        = []hertzconfig.Option{server.WithHostPorts(cfg.Addr())}
	)

	if cfg.OTelEnabled {
		shutdownTelemetry, err = otelinit.Setup(ctx, cfg)
		if err != nil {
			logger.Logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
		}
		meter = otel.Meter(cfg.ServiceName)

		if err := metrics.InitMetricsWithMeter(meter); err != nil {
			logger.Logger.Fatal("Failed to initialize metrics", zap.Error(err))
		}
	}

	sheetsClient, err := sheets.New(ctx, cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize sheets client", zap.Error(err))
	}

	verifier, err := captcha.New(cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize captcha verifier", zap.Error(err))
	}

	// 记得关闭外部连接
	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		logger.Logger.Warn("Failed to connect redis, rate limit disabled", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		if meter != nil {
			if err := redis.Instrument(rdb, cfg.ServiceName, cfg.RedisDB, meter); err != nil {
				logger.Logger.Warn("Failed to instrument redis client", zap.Error(err))
			}
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Logger.Error("Failed to close redis", zap.Error(err))
			}
		}()
	}

	chain, err := middleware.Init(cfg, rdb, meter)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize middlewares", zap.Error(err))
	}

	svc := service.NewContactService(sheetsClient,
		service.PolicyFromConfig(cfg),
		cfg.SheetsAppendTimeout,
		service.WithCaptcha(verifier),
	)

	if cfg.OTelEnabled {
		tracerOpt, tracerMW := middleware.NewServerTracerConfig()
		serverOpts = append(serverOpts, tracerOpt)
		chain.Global = append([]app.HandlerFunc{tracerMW}, chain.Global...)
	}

	logger.Logger.Info("Server starting",
		zap.String("service", cfg.ServiceName),
		zap.String("addr", cfg.Addr()),
		zap.String("environment", cfg.Environment),
		zap.String("sheets_provider", cfg.SheetsProvider),
		zap.Bool("rate_limit", rdb != nil),
		zap.Bool("captcha", verifier.Enabled()),
	)

	h := server.New(serverOpts...)

	router.Register(h, router.Deps{
		Contact:    handler.NewContactHandler(svc, cfg.ExposeErrorDetails),
		Middleware: chain,
	})

	// 优雅关闭：在单独的 goroutine 中监听关闭信号并调用 Shutdown
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", cfg.Addr()))

	h.Spin()

	if shutdownTelemetry != nil {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Logger.Error("Failed to flush telemetry", zap.Error(err))
		}
	}

	logger.Logger.Info("Server shutting down gracefully")
}
