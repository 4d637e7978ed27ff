package middleware

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.uber.org/zap"

	"ContactIntake/pkg/errors"
	"ContactIntake/pkg/logger"
	"ContactIntake/pkg/response"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type, X-Request-ID, Accept"
)

// CORSMiddleware 只放行白名单内的 Origin
// 没有 Origin 的请求（curl、服务端调用）直接放行
func CORSMiddleware(allowedOrigins []string) app.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(ctx context.Context, c *app.RequestContext) {
		origin := string(c.Request.Header.Get("Origin"))
		if origin == "" {
			c.Next(ctx)
			return
		}

		c.Header("Vary", "Origin")

		if _, ok := allowed[origin]; !ok {
			logger.Logger.Warn("Rejected cross-origin request",
				zap.String("origin", origin),
				zap.String("path", string(c.Path())),
			)
			response.AbortWithError(ctx, c, errors.OriginNotAllowed)
			return
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", corsAllowMethods)
		c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
		c.Header("Access-Control-Expose-Headers", RequestIDHeader)
		c.Header("Access-Control-Max-Age", "86400")

		// 处理 OPTIONS 预检请求
		if string(c.Method()) == consts.MethodOptions {
			c.AbortWithStatus(consts.StatusNoContent)
			return
		}

		c.Next(ctx)
	}
}
