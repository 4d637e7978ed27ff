package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// 提交结果
const (
	OutcomeSaved         = "saved"
	OutcomeInvalid       = "invalid"
	OutcomeCaptchaFailed = "captcha_failed"
	OutcomeUpstreamError = "upstream_error"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 表单相关指标
	SubmissionsTotal    metric.Int64Counter
	ValidationFailures  metric.Int64Counter
	SheetsAppendLatency metric.Float64Histogram
}

var metrics *OTelMetrics

// InitMetrics 初始化指标，未调用时所有 Record 方法均为空操作
func InitMetrics() error {
	return InitMetricsWithMeter(otel.Meter("contact-intake"))
}

func InitMetricsWithMeter(meter metric.Meter) error {
	var err error

	m := &OTelMetrics{}

	m.SubmissionsTotal, err = meter.Int64Counter(
		"contact_submissions_total",
		metric.WithDescription("Total number of contact form submissions by outcome"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return err
	}

	m.ValidationFailures, err = meter.Int64Counter(
		"contact_validation_failures_total",
		metric.WithDescription("Total number of rejected submissions by violated rule"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return err
	}

	m.SheetsAppendLatency, err = meter.Float64Histogram(
		"sheets_append_duration_seconds",
		metric.WithDescription("Time spent appending a row to the spreadsheet"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordSubmission 记录一次提交结果
func RecordSubmission(ctx context.Context, outcome string) {
	if m := GetMetrics(); m != nil {
		m.SubmissionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

// RecordValidationFailure 记录被拒绝的校验规则
func RecordValidationFailure(ctx context.Context, code string) {
	if m := GetMetrics(); m != nil {
		m.ValidationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", code)))
	}
}

// RecordSheetsAppend 记录追加耗时
func RecordSheetsAppend(ctx context.Context, seconds float64, err error) {
	m := GetMetrics()
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	m.SheetsAppendLatency.Record(ctx, seconds, metric.WithAttributes(attribute.String("status", status)))
}
