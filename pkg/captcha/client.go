package captcha

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ContactIntake/config"
	"ContactIntake/pkg/logger"
)

var (
	ErrTokenRequired       = errors.New("captcha verify param is required")
	ErrResponseNil         = errors.New("captcha verify response is empty")
	ErrUnsupportedProvider = errors.New("unsupported captcha provider")
)

// Verifier 人机验证接口
type Verifier interface {
	// Verify 校验前端组件返回的 captchaVerifyParam
	// remoteIP 仅用于日志
	// 返回 (false, nil) 表示校验未通过；error 表示验证服务本身不可用
	Verify(ctx context.Context, verifyParam, remoteIP string) (bool, error)

	// Enabled 为 false 时请求体无需携带 captchaVerifyParam
	Enabled() bool
}

// New 根据配置创建 Verifier
func New(cfg config.Config) (Verifier, error) {
	var (
		v   Verifier
		err error
	)

	switch cfg.CaptchaProvider {
	case "aliyun":
		v, err = NewAliyunVerifier(cfg.CaptchaEndpoint, cfg.CaptchaSceneID, cfg.CaptchaTimeout)
	case "none", "":
		v = Disabled{}
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.CaptchaProvider)
	}

	if err != nil {
		logger.Logger.Error("Failed to initialize captcha verifier", zap.Error(err))
		return nil, err
	}

	logger.Logger.Info("Captcha verifier initialized successfully",
		zap.String("provider", cfg.CaptchaProvider),
	)
	return v, nil
}

// Disabled 不做人机验证
type Disabled struct{}

func (Disabled) Verify(ctx context.Context, verifyParam, remoteIP string) (bool, error) {
	return true, nil
}

func (Disabled) Enabled() bool { return false }
