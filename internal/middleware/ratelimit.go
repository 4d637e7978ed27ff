package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ContactIntake/config"
	"ContactIntake/pkg/errors"
	"ContactIntake/pkg/logger"
	"ContactIntake/pkg/response"
	"ContactIntake/storage/redis"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 时间窗口
	Window time.Duration
	// 时间窗口内最大请求数
	MaxRequests int
	// 限流键前缀
	KeyPrefix string
}

func RateLimitConfigFromConfig(cfg config.Config) RateLimitConfig {
	return RateLimitConfig{
		Window:      cfg.RateLimitWindow,
		MaxRequests: cfg.RateLimitMax,
		KeyPrefix:   redis.Key(cfg.RedisPrefix, "rate", "contact"),
	}
}

// Limiter 判断 key 在当前窗口内是否还允许请求
// 返回窗口内（含本次）的请求数
type Limiter interface {
	Allow(ctx context.Context, key string, cfg RateLimitConfig) (bool, int, error)
}

// RedisLimiter 基于 zset 的滑动窗口，多实例共享计数
type RedisLimiter struct {
	client *redislib.Client
}

func NewRedisLimiter(client *redislib.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

// Allow 检查是否允许请求，使用滑动窗口算法
func (rl *RedisLimiter) Allow(ctx context.Context, key string, cfg RateLimitConfig) (bool, int, error) {
	now := time.Now()
	windowStart := now.Add(-cfg.Window)

	pipe := rl.client.Pipeline()

	// 移除窗口开始时间之前的所有请求记录
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))

	// 同一纳秒内的并发请求也要各占一个成员
	pipe.ZAdd(ctx, key, redislib.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})

	zcardCmd := pipe.ZCard(ctx, key)

	pipe.Expire(ctx, key, cfg.Window+10*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	count := int(zcardCmd.Val())
	return count <= cfg.MaxRequests, count, nil
}

// RateLimitMiddleware 按客户端 IP 限流
// limiter 出错时放行，限流组件故障不应拦截正常提交
func RateLimitMiddleware(limiter Limiter, cfg RateLimitConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		key := redis.Key(cfg.KeyPrefix, "ip", c.ClientIP())

		allowed, count, err := limiter.Allow(ctx, key, cfg)
		if err != nil {
			logger.Logger.Warn("Rate limiter unavailable, allowing request",
				zap.String("key", key),
				zap.Error(err),
			)
			c.Next(ctx)
			return
		}

		remaining := cfg.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Response.Header.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(cfg.Window).Unix(), 10))

		if !allowed {
			logger.Logger.Info("Rate limit exceeded",
				zap.String("client_ip", c.ClientIP()),
				zap.Int("count", count),
				zap.String("request_id", GetRequestID(c)),
			)
			response.AbortWithError(ctx, c, errors.TooManyRequests)
			return
		}

		c.Next(ctx)
	}
}
