package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"ContactIntake/config"
	"ContactIntake/internal/model"
	"ContactIntake/internal/model/dto"
	"ContactIntake/pkg/captcha"
	pkgerrors "ContactIntake/pkg/errors"
	"ContactIntake/pkg/logger"
	"ContactIntake/pkg/metrics"
	"ContactIntake/pkg/sheets"
	"ContactIntake/utils"
)

// Policy 表单校验策略，长度为 0 表示不校验
type Policy struct {
	StrictPhone      bool
	MinNameLength    int
	MinMessageLength int
}

func PolicyFromConfig(cfg config.Config) Policy {
	return Policy{
		StrictPhone:      cfg.PhonePolicy == config.PhonePolicyStrict,
		MinNameLength:    cfg.MinNameLength,
		MinMessageLength: cfg.MinMessageLength,
	}
}

type ContactService struct {
	sheets        sheets.Client
	captcha       captcha.Verifier
	policy        Policy
	appendTimeout time.Duration
	now           func() time.Time
}

type Option func(*ContactService)

// WithClock 替换时间源
func WithClock(now func() time.Time) Option {
	return func(s *ContactService) {
		s.now = now
	}
}

// WithCaptcha 启用人机验证
func WithCaptcha(v captcha.Verifier) Option {
	return func(s *ContactService) {
		s.captcha = v
	}
}

func NewContactService(client sheets.Client, policy Policy, appendTimeout time.Duration, opts ...Option) *ContactService {
	s := &ContactService{
		sheets:        client,
		captcha:       captcha.Disabled{},
		policy:        policy,
		appendTimeout: appendTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate 按顺序校验，遇到第一个错误即返回
func (s *ContactService) Validate(req dto.ContactRequest) error {
	// 只判断是否为空串，纯空白由后续的长度与格式规则处理
	for _, field := range dto.RequiredFields {
		if req.Value(field) == "" {
			return pkgerrors.NewValidationError(pkgerrors.MissingField, field)
		}
	}

	if n := s.policy.MinNameLength; n > 0 && utils.TrimmedLen(req.FullName) < n {
		return pkgerrors.NewValidationErrorf(pkgerrors.NameTooShort, dto.FieldFullName,
			"Full name must be at least %d characters", n)
	}

	if !utils.ValidateEmail(req.EmailAddress) {
		return pkgerrors.NewValidationError(pkgerrors.InvalidEmail, dto.FieldEmailAddress)
	}

	if !utils.ValidatePhone(req.PhoneNumber, s.policy.StrictPhone) {
		if s.policy.StrictPhone {
			return pkgerrors.NewValidationErrorf(pkgerrors.InvalidPhone, dto.FieldPhoneNumber,
				"Invalid phone number (must be 10 digits and start with 6-9)")
		}
		return pkgerrors.NewValidationError(pkgerrors.InvalidPhone, dto.FieldPhoneNumber)
	}

	if n := s.policy.MinMessageLength; n > 0 && utils.TrimmedLen(req.Message) < n {
		return pkgerrors.NewValidationErrorf(pkgerrors.MessageTooShort, dto.FieldMessage,
			"Message must be at least %d characters", n)
	}

	return nil
}

// Submit 校验后追加一行；校验失败时不会发起任何外部调用
func (s *ContactService) Submit(ctx context.Context, req dto.ContactRequest, remoteIP string) error {
	if err := s.Validate(req); err != nil {
		ve, _ := pkgerrors.AsValidation(err)
		logger.Logger.Debug("Contact submission rejected",
			zap.String("rule", ve.Code),
			zap.String("field", ve.Field),
			zap.String("remote_ip", remoteIP),
		)
		metrics.RecordValidationFailure(ctx, ve.Code)
		metrics.RecordSubmission(ctx, metrics.OutcomeInvalid)
		return err
	}

	if err := s.verifyCaptcha(ctx, req.CaptchaVerifyParam, remoteIP); err != nil {
		return err
	}

	submission := model.ContactSubmission{
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		EmailAddress: req.EmailAddress,
		Subject:      req.Subject,
		Message:      req.Message,
		SubmittedAt:  s.now(),
	}

	appendCtx, cancel := context.WithTimeout(ctx, s.appendTimeout)
	defer cancel()

	start := time.Now()
	err := s.sheets.AppendRow(appendCtx, submission.Row(), sheets.UserEntered)
	metrics.RecordSheetsAppend(ctx, time.Since(start).Seconds(), err)
	if err != nil {
		logger.Logger.Error("Failed to append contact submission",
			zap.String("remote_ip", remoteIP),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		metrics.RecordSubmission(ctx, metrics.OutcomeUpstreamError)
		return pkgerrors.NewUpstreamError("sheets.append", err)
	}

	logger.Logger.Info("Contact submission saved",
		zap.String("remote_ip", remoteIP),
		zap.Duration("elapsed", time.Since(start)),
	)
	metrics.RecordSubmission(ctx, metrics.OutcomeSaved)
	return nil
}

func (s *ContactService) verifyCaptcha(ctx context.Context, param, remoteIP string) error {
	if s.captcha == nil || !s.captcha.Enabled() {
		return nil
	}

	if strings.TrimSpace(param) == "" {
		metrics.RecordSubmission(ctx, metrics.OutcomeCaptchaFailed)
		return pkgerrors.NewValidationError(pkgerrors.CaptchaRequired, dto.FieldCaptcha)
	}

	ok, err := s.captcha.Verify(ctx, param, remoteIP)
	if err != nil {
		logger.Logger.Error("Captcha verification unavailable",
			zap.String("remote_ip", remoteIP),
			zap.Error(err),
		)
		metrics.RecordSubmission(ctx, metrics.OutcomeUpstreamError)
		return pkgerrors.NewUpstreamError("captcha.verify", err)
	}
	if !ok {
		metrics.RecordSubmission(ctx, metrics.OutcomeCaptchaFailed)
		return pkgerrors.NewValidationError(pkgerrors.CaptchaFailed, dto.FieldCaptcha)
	}
	return nil
}
