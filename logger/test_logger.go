package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// NewTestLogger creates a logger that records into memory for assertions
//
//	log, logs := logger.NewTestLogger()
//	svc := cache.NewService(store, cfg, log)
//	svc.Set(ctx, "k", v)
//	assert.Equal(t, 1, logs.FilterMessage("cache write failed").Len())
func NewTestLogger() (*CtxZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := DefaultManagerConfig()
	cfg.AppName = ""
	cfg.EnableStacktrace = false
	return &CtxZapLogger{
		base:   zap.New(core),
		module: "test",
		config: &cfg,
	}, logs
}
