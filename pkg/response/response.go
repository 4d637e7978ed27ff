package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"ContactIntake/pkg/errors"
)

const savedMessage = "Saved successfully"

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// SuccessResponse 统一的成功响应格式
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status string `json:"status"`
}

func errorToHTTPStatus(code string) int {
	switch code {
	case errors.TooManyRequests.Code:
		return http.StatusTooManyRequests // 429
	case errors.OriginNotAllowed.Code:
		return http.StatusForbidden // 403
	case errors.MissingField.Code, errors.NameTooShort.Code,
		errors.InvalidEmail.Code, errors.InvalidPhone.Code,
		errors.MessageTooShort.Code, errors.InvalidPayload.Code,
		errors.CaptchaRequired.Code, errors.CaptchaFailed.Code:
		return http.StatusBadRequest // 400
	default:
		return http.StatusInternalServerError // 500
	}
}

// Resolve 将 err 映射为状态码与响应体。
// 非业务错误一律 500；exposeDetails 为 false 时只返回通用提示。
func Resolve(err error, exposeDetails bool) (int, ErrorResponse) {
	var def errors.Definition
	switch e := err.(type) {
	case errors.Definition:
		def = e
	case *errors.Definition:
		def = *e
	default:
		if ve, ok := errors.AsValidation(err); ok {
			def = ve.Definition
		} else {
			def = errors.Internal
			if exposeDetails && err != nil {
				def.Message = err.Error()
			}
		}
	}

	return errorToHTTPStatus(def.Code), ErrorResponse{
		Success: false,
		Error:   def.Message,
		Code:    def.Code,
	}
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error, exposeDetails bool) {
	status, body := Resolve(err, exposeDetails)
	c.JSON(status, body)
}

// AbortWithError 返回错误响应并中止后续 handler（用于中间件）
func AbortWithError(ctx context.Context, c *app.RequestContext, err error) {
	status, body := Resolve(err, false)
	c.AbortWithStatusJSON(status, body)
}

// Created 表单写入成功
func Created(ctx context.Context, c *app.RequestContext) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: savedMessage,
	})
}

func Health(ctx context.Context, c *app.RequestContext) {
	c.JSON(http.StatusOK, HealthResponse{Status: "Backend is running"})
}
