package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCtxZapLogger_TraceIDFromContext(t *testing.T) {
	log, logs := NewTestLogger()
	log.config.EnableTraceID = true

	ctx := WithTraceID(context.Background(), "trace-abc")
	log.InfoCtx(ctx, "cache hit", zap.String("key", "cache:users"))

	entries := logs.FilterMessage("cache hit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "trace-abc", fields["trace_id"])
	assert.Equal(t, "cache:users", fields["key"])
}

func TestCtxZapLogger_StringContextKey(t *testing.T) {
	log, logs := NewTestLogger()

	ctx := context.WithValue(context.Background(), "trace_id", "legacy-123") //nolint:staticcheck
	log.WarnCtx(ctx, "redis command failed")

	entries := logs.FilterMessage("redis command failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "legacy-123", entries[0].ContextMap()["trace_id"])
}

func TestCtxZapLogger_NoTraceID(t *testing.T) {
	log, logs := NewTestLogger()
	log.Debug("plain")

	entries := logs.FilterMessage("plain").All()
	require.Len(t, entries, 1)
	_, ok := entries[0].ContextMap()["trace_id"]
	assert.False(t, ok)
}

func TestCtxZapLogger_With(t *testing.T) {
	log, logs := NewTestLogger()
	child := log.With(zap.String("prefix", "academia_pro:"))
	child.Error("boom")

	assert.Equal(t, "test", child.Module())
	entries := logs.FilterMessage("boom").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "academia_pro:", entries[0].ContextMap()["prefix"])
}

func TestCtxZapLogger_NopDoesNotPanic(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.InfoCtx(context.Background(), "ignored")
		log.ErrorCtx(context.Background(), "ignored")
	})
}

func TestManager_FileOutputAndStacktrace(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(ManagerConfig{
		BaseLogDir:       dir,
		Level:            "debug",
		EnableConsole:    false,
		EnableFile:       true,
		EnableTraceID:    true,
		EnableStacktrace: true,
		StacktraceDepth:  3,
	})

	log := m.GetLogger("cache")
	assert.Same(t, log, m.GetLogger("cache"))

	ctx := WithTraceID(context.Background(), "trace-file")
	log.InfoCtx(ctx, "stats collected")
	log.ErrorCtx(ctx, "flush failed")
	m.CloseAll()

	infoFiles, err := filepath.Glob(filepath.Join(dir, "cache", "cache-info-*.log"))
	require.NoError(t, err)
	require.Len(t, infoFiles, 1)
	info, err := os.ReadFile(infoFiles[0])
	require.NoError(t, err)
	assert.Contains(t, string(info), "stats collected")
	assert.Contains(t, string(info), "trace-file")
	assert.NotContains(t, string(info), "flush failed")

	errorFiles, err := filepath.Glob(filepath.Join(dir, "cache", "cache-error-*.log"))
	require.NoError(t, err)
	require.Len(t, errorFiles, 1)
	errContent, err := os.ReadFile(errorFiles[0])
	require.NoError(t, err)
	assert.Contains(t, string(errContent), "flush failed")
	assert.Contains(t, string(errContent), `"stack"`)
}

func TestShouldCaptureStacktrace(t *testing.T) {
	cfg := DefaultManagerConfig()
	assert.True(t, shouldCaptureStacktrace("error", cfg))
	assert.False(t, shouldCaptureStacktrace("warn", cfg))

	cfg.EnableStacktrace = false
	assert.False(t, shouldCaptureStacktrace("error", cfg))
}

func TestGinLogWriter(t *testing.T) {
	log, logs := NewTestLogger()
	w := NewGinLogWriterWith(log)

	n, err := w.Write([]byte("[GIN-debug] GET /health\n"))
	require.NoError(t, err)
	assert.Equal(t, 24, n)
	_, _ = w.Write([]byte("[Recovery] panic recovered"))
	_, _ = w.Write([]byte("   "))

	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, 1, logs.FilterMessage("[Recovery] panic recovered").Len())
}
