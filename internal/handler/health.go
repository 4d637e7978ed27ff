package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"ContactIntake/pkg/response"
)

// Health 存活检查，不依赖任何外部服务。
func Health(ctx context.Context, c *app.RequestContext) {
	response.Health(ctx, c)
}

// Preflight 兜底的 OPTIONS 响应，跨域预检由 CORS 中间件处理
func Preflight(ctx context.Context, c *app.RequestContext) {
	c.AbortWithStatus(consts.StatusNoContent)
}
