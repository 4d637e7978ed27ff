package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"ContactIntake/pkg/logger"
	"ContactIntake/pkg/snowflake"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	maxRequestIDLen = 64
)

// RequestIDMiddleware 复用上游传入的 X-Request-ID，否则生成 snowflake ID
func RequestIDMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := string(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLen {
			generated, err := snowflake.NextString()
			if err != nil {
				logger.Logger.Warn("Failed to generate request id", zap.Error(err))
			}
			id = generated
		}

		if id != "" {
			c.Set(requestIDKey, id)
			c.Header(RequestIDHeader, id)
		}

		c.Next(ctx)
	}
}

// GetRequestID 从上下文中获取请求 ID
func GetRequestID(c *app.RequestContext) string {
	return c.GetString(requestIDKey)
}
