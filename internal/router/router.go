package router

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"ContactIntake/internal/handler"
	"ContactIntake/internal/middleware"
)

// Deps 路由依赖，由 main 组装后注入
type Deps struct {
	Contact    *handler.ContactHandler
	Middleware middleware.Chain
}

func Register(h *server.Hertz, deps Deps) {
	h.Use(deps.Middleware.Global...)

	api := h.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.OPTIONS("/health", handler.Preflight)

		// 限流只作用于表单提交
		submit := append([]app.HandlerFunc{}, deps.Middleware.Submit...)
		submit = append(submit, deps.Contact.Submit)
		api.POST("/contact", submit...)
		api.OPTIONS("/contact", handler.Preflight)
	}
}
