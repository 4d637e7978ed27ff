package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "contact:rate:contact:ip:***", sanitizeKey("contact:rate:contact:ip:203.0.113.7"))
	assert.Equal(t, "contact:other", sanitizeKey("contact:other"))
}

func TestExtractKeysSkipsValues(t *testing.T) {
	keys := extractKeys([]interface{}{"zadd", "contact:rate:contact:ip:10.0.0.1", 1.0, "5f0c7c1e"})
	assert.Equal(t, []string{"contact:rate:contact:ip:***"}, keys)
	assert.Nil(t, extractKeys([]interface{}{"ping"}))
}

func TestProcessHookRecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	hook, err := NewTracingHook("contact-intake", 0, meter)
	require.NoError(t, err)

	ctx := context.Background()
	failing := hook.ProcessHook(func(ctx context.Context, cmd redis.Cmder) error {
		return errors.New("connection refused")
	})
	ok := hook.ProcessHook(func(ctx context.Context, cmd redis.Cmder) error {
		return nil
	})

	require.Error(t, failing(ctx, redis.NewStatusCmd(ctx, "ping")))
	require.NoError(t, ok(ctx, redis.NewStatusCmd(ctx, "ping")))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "redis.commands.total" {
				continue
			}
			sum, isSum := m.Data.(metricdata.Sum[int64])
			require.True(t, isSum)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), total)
}
