package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivespace/hivechat/config"
	"github.com/hivespace/hivechat/logging"
)

func TestInit_DisabledIsNoop(t *testing.T) {
	dir := t.TempDir()
	tracer, meter, cleanup, err := Init(context.Background(), dir, config.TelemetryConfig{}, "test", logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, tracer)
	require.NotNil(t, meter)
	cleanup()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInit_ExportsSpansToFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.TelemetryConfig{Enabled: true, MetricsIntervalSecs: 60}
	tracer, meter, cleanup, err := Init(context.Background(), dir, cfg, "test", logging.Discard())
	require.NoError(t, err)

	_, span := tracer.Start(context.Background(), "stream.submit")
	span.End()
	counter, err := meter.Int64Counter("hivechat.test.count")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
	cleanup()

	data, err := os.ReadFile(filepath.Join(dir, traceFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "stream.submit")

	data, err = os.ReadFile(filepath.Join(dir, metricsFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hivechat.test.count")
}
