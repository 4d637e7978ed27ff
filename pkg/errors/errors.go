package errors

import (
	"errors"
	"fmt"
)

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 表单校验错误。
var (
	MissingField    = Definition{Code: "MISSING_FIELD", Message: "All fields are required"}
	NameTooShort    = Definition{Code: "NAME_TOO_SHORT", Message: "Full name is too short"}
	InvalidEmail    = Definition{Code: "INVALID_EMAIL", Message: "Invalid email format"}
	InvalidPhone    = Definition{Code: "INVALID_PHONE", Message: "Invalid phone number"}
	MessageTooShort = Definition{Code: "MESSAGE_TOO_SHORT", Message: "Message is too short"}
	InvalidPayload  = Definition{Code: "INVALID_PAYLOAD", Message: "Request body must be a JSON object"}
)

// 验证码错误。
var (
	CaptchaRequired = Definition{Code: "CAPTCHA_REQUIRED", Message: "Captcha verification is required"}
	CaptchaFailed   = Definition{Code: "CAPTCHA_FAILED", Message: "Captcha verification failed"}
)

// 访问控制错误。
var (
	TooManyRequests  = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many submissions, please try again later"}
	OriginNotAllowed = Definition{Code: "ORIGIN_NOT_ALLOWED", Message: "Not allowed by CORS"}
)

// 服务端错误。
var (
	Internal = Definition{Code: "INTERNAL_ERROR", Message: "Internal server error"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	MissingField.Code:     MissingField,
	NameTooShort.Code:     NameTooShort,
	InvalidEmail.Code:     InvalidEmail,
	InvalidPhone.Code:     InvalidPhone,
	MessageTooShort.Code:  MessageTooShort,
	InvalidPayload.Code:   InvalidPayload,
	CaptchaRequired.Code:  CaptchaRequired,
	CaptchaFailed.Code:    CaptchaFailed,
	TooManyRequests.Code:  TooManyRequests,
	OriginNotAllowed.Code: OriginNotAllowed,
	Internal.Code:         Internal,
}

// Get 根据错误码返回 Definition，若不存在则返回通用错误。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// ValidationError 客户端输入不合法，始终映射为 400，且不会触达外部服务。
type ValidationError struct {
	Definition
	Field string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Definition
}

// NewValidationError 使用默认信息构造校验错误。
func NewValidationError(def Definition, field string) *ValidationError {
	return &ValidationError{Definition: def, Field: field}
}

// NewValidationErrorf 使用自定义信息构造校验错误，错误码保持不变。
func NewValidationErrorf(def Definition, field, format string, args ...any) *ValidationError {
	def.Message = fmt.Sprintf(format, args...)
	return &ValidationError{Definition: def, Field: field}
}

// UpstreamError 外部调用（Sheets 追加、验证码校验）失败，始终映射为 500。
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func NewUpstreamError(op string, err error) *UpstreamError {
	return &UpstreamError{Op: op, Err: err}
}

// AsValidation 判断 err 链中是否存在 ValidationError。
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsUpstream 判断 err 链中是否存在 UpstreamError。
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
