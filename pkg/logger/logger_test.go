package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerEmitsServiceAndTraceID(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelInfo, "menuflow", func(ctx context.Context) string { return "abc123" })

	log.Info(context.Background(), "checkout complete", "order_id", "o1")
	require.NoError(t, log.Sync())

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "menuflow", rec["service"])
	assert.Equal(t, "abc123", rec["trace_id"])
	assert.Equal(t, "checkout complete", rec["msg"])
	assert.Equal(t, "o1", rec["order_id"])
}

func TestLoggerHonorsMinLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelError, "menuflow", nil)

	log.Info(context.Background(), "ignored")
	assert.Zero(t, buf.Len())

	log.Error(context.Background(), "kept")
	assert.NotZero(t, buf.Len())
}
