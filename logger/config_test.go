package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestManagerConfig_ApplyDefaults(t *testing.T) {
	cfg := ManagerConfig{Level: "debug", MaxSize: 200}
	cfg.ApplyDefaults()

	assert.Equal(t, "logs", cfg.BaseLogDir)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, 200, cfg.MaxSize)
	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, "error", cfg.StacktraceLevel)
	assert.Equal(t, "trace_id", cfg.TraceIDFieldName)
	// Booleans keep their value
	assert.False(t, cfg.EnableConsole)
}

func TestManagerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ManagerConfig)
		wantErr bool
	}{
		{"defaults", func(c *ManagerConfig) {}, false},
		{"bad level", func(c *ManagerConfig) { c.Level = "verbose" }, true},
		{"bad encoding", func(c *ManagerConfig) { c.Encoding = "xml" }, true},
		{"max size too big", func(c *ManagerConfig) { c.MaxSize = 20000 }, true},
		{"negative backups", func(c *ManagerConfig) { c.MaxBackups = -1 }, true},
		{"bad stacktrace level", func(c *ManagerConfig) { c.StacktraceLevel = "trace" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultManagerConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("unknown"))
}
