package middleware

import (
	"github.com/cloudwego/hertz/pkg/app"
	redislib "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"ContactIntake/config"
	"ContactIntake/pkg/logger"
)

// Chain 按顺序组装好的中间件
type Chain struct {
	// Global 作用于所有路由
	Global []app.HandlerFunc
	// Submit 只作用于表单提交
	Submit []app.HandlerFunc
}

// Init 初始化所有中间件
// rdb 为 nil 时不限流；meter 为 nil 时不记录 HTTP 指标
func Init(cfg config.Config, rdb *redislib.Client, meter metric.Meter) (Chain, error) {
	var chain Chain

	chain.Global = append(chain.Global,
		RecoverMiddleware(cfg.ExposeErrorDetails),
		RequestIDMiddleware(),
	)

	if meter != nil {
		otelMW, err := OpenTelemetryMiddleware(meter)
		if err != nil {
			logger.Logger.Error("Failed to initialize otel middleware", zap.Error(err))
			return Chain{}, err
		}
		chain.Global = append(chain.Global, otelMW)
	}

	chain.Global = append(chain.Global, CORSMiddleware(cfg.AllowedOrigins))

	if rdb != nil {
		rl := RateLimitConfigFromConfig(cfg)
		chain.Submit = append(chain.Submit, RateLimitMiddleware(NewRedisLimiter(rdb), rl))
		logger.Logger.Info("Rate limit enabled",
			zap.Duration("window", rl.Window),
			zap.Int("max_requests", rl.MaxRequests),
		)
	}

	logger.Logger.Info("All middlewares initialized successfully")
	return chain, nil
}

