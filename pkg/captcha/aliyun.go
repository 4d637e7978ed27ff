package captcha

import (
	"context"
	"fmt"
	"time"

	captcha "github.com/alibabacloud-go/captcha-20230305/client"
	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"
	credential "github.com/aliyun/credentials-go/credentials"
	"go.uber.org/zap"

	"ContactIntake/pkg/logger"
)

// verifyAPI captcha SDK 中用到的调用
type verifyAPI interface {
	VerifyIntelligentCaptchaWithOptions(request *captcha.VerifyIntelligentCaptchaRequest, runtime *util.RuntimeOptions) (*captcha.VerifyIntelligentCaptchaResponse, error)
}

// AliyunVerifier 阿里云智能验证码实现
type AliyunVerifier struct {
	client  verifyAPI
	sceneID string
	timeout time.Duration
}

// NewAliyunVerifier 凭据通过环境变量获取：
// ALIBABA_CLOUD_ACCESS_KEY_ID 和 ALIBABA_CLOUD_ACCESS_KEY_SECRET
func NewAliyunVerifier(endpoint, sceneID string, timeout time.Duration) (*AliyunVerifier, error) {
	cred, err := credential.NewCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun credential: %w", err)
	}

	client, err := captcha.NewClient(&openapi.Config{
		Credential: cred,
		Endpoint:   tea.String(endpoint),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create captcha client: %w", err)
	}

	return newAliyunVerifier(client, sceneID, timeout), nil
}

func newAliyunVerifier(client verifyAPI, sceneID string, timeout time.Duration) *AliyunVerifier {
	return &AliyunVerifier{
		client:  client,
		sceneID: sceneID,
		timeout: timeout,
	}
}

func (v *AliyunVerifier) Enabled() bool { return true }

// runtimeOptions SDK 超时取 ctx 剩余时间与配置超时中较小者，单位毫秒
func (v *AliyunVerifier) runtimeOptions(ctx context.Context) *util.RuntimeOptions {
	timeout := v.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}

	ms := int(timeout / time.Millisecond)
	if ms < 1 {
		ms = 1
	}

	return &util.RuntimeOptions{
		ConnectTimeout: tea.Int(ms),
		ReadTimeout:    tea.Int(ms),
		Autoretry:      tea.Bool(false),
	}
}

type verifyResult struct {
	response *captcha.VerifyIntelligentCaptchaResponse
	err      error
}

// Verify 调用 VerifyIntelligentCaptcha
// SDK 不接收 ctx，ctx 结束时直接返回，不等待 SDK 调用完成
func (v *AliyunVerifier) Verify(ctx context.Context, verifyParam, remoteIP string) (bool, error) {
	if verifyParam == "" {
		return false, ErrTokenRequired
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	request := &captcha.VerifyIntelligentCaptchaRequest{
		CaptchaVerifyParam: tea.String(verifyParam),
		SceneId:            tea.String(v.sceneID),
	}
	runtime := v.runtimeOptions(ctx)

	done := make(chan verifyResult, 1)
	go func() {
		response, err := v.client.VerifyIntelligentCaptchaWithOptions(request, runtime)
		done <- verifyResult{response: response, err: err}
	}()

	var res verifyResult
	select {
	case res = <-done:
	case <-ctx.Done():
		logger.Logger.Error("Captcha verification timed out",
			zap.String("scene", v.sceneID),
			zap.String("remote_ip", remoteIP),
			zap.Error(ctx.Err()),
		)
		return false, fmt.Errorf("failed to verify captcha: %w", ctx.Err())
	}

	if res.err != nil {
		logger.Logger.Error("Failed to verify captcha",
			zap.String("scene", v.sceneID),
			zap.String("remote_ip", remoteIP),
			zap.Error(res.err),
		)
		return false, fmt.Errorf("failed to verify captcha: %w", res.err)
	}

	if res.response == nil || res.response.Body == nil {
		return false, ErrResponseNil
	}
	body := res.response.Body

	if body.Code != nil && *body.Code != "200" && *body.Code != "Success" {
		message := tea.StringValue(body.Message)
		logger.Logger.Error("Captcha service returned error",
			zap.String("code", *body.Code),
			zap.String("message", message),
			zap.String("scene", v.sceneID),
		)
		return false, fmt.Errorf("captcha service error: %s - %s", *body.Code, message)
	}

	if body.Result != nil && tea.BoolValue(body.Result.VerifyResult) {
		return true, nil
	}

	logger.Logger.Info("Captcha verification rejected",
		zap.String("scene", v.sceneID),
		zap.String("remote_ip", remoteIP),
	)
	return false, nil
}
