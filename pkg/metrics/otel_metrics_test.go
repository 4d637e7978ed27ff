package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordWithoutInit(t *testing.T) {
	metrics = nil
	assert.NotPanics(t, func() {
		RecordSubmission(context.Background(), OutcomeSaved)
		RecordValidationFailure(context.Background(), "INVALID_EMAIL")
		RecordSheetsAppend(context.Background(), 0.2, nil)
	})
}

func TestRecordSubmission(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { metrics = nil })

	require.NoError(t, InitMetricsWithMeter(provider.Meter("test")))

	ctx := context.Background()
	RecordSubmission(ctx, OutcomeSaved)
	RecordSubmission(ctx, OutcomeSaved)
	RecordSubmission(ctx, OutcomeInvalid)
	RecordSheetsAppend(ctx, 0.3, errors.New("boom"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	found := map[string]bool{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		found[m.Name] = true
		if m.Name == "contact_submissions_total" {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			assert.Equal(t, int64(3), total)
			assert.Len(t, sum.DataPoints, 2)
		}
	}
	assert.True(t, found["contact_submissions_total"])
	assert.True(t, found["sheets_append_duration_seconds"])
}
