package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/json"
	"go.uber.org/zap"

	"ContactIntake/internal/middleware"
	"ContactIntake/internal/model/dto"
	"ContactIntake/pkg/errors"
	"ContactIntake/pkg/logger"
	"ContactIntake/pkg/response"
)

// ContactSubmitter 表单提交的业务实现
type ContactSubmitter interface {
	Submit(ctx context.Context, req dto.ContactRequest, remoteIP string) error
}

type ContactHandler struct {
	service       ContactSubmitter
	exposeDetails bool
}

func NewContactHandler(service ContactSubmitter, exposeDetails bool) *ContactHandler {
	return &ContactHandler{service: service, exposeDetails: exposeDetails}
}

// Submit 接收联系表单并写入表格。
func (h *ContactHandler) Submit(ctx context.Context, c *app.RequestContext) {
	var payload map[string]interface{}
	if err := json.Unmarshal(c.Request.Body(), &payload); err != nil || payload == nil {
		response.Error(ctx, c, errors.InvalidPayload, h.exposeDetails)
		return
	}

	req := dto.ContactRequestFromPayload(payload)
	if err := h.service.Submit(ctx, req, c.ClientIP()); err != nil {
		if _, ok := errors.AsUpstream(err); ok {
			logger.Logger.Error("Contact submission failed",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.Error(err),
			)
			_ = c.Error(err)
		}
		response.Error(ctx, c, err, h.exposeDetails)
		return
	}

	response.Created(ctx, c)
}
