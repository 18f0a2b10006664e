package logger

import (
	"strings"
)

// GinLogWriter adapts gin's text output (io.Writer) to structured logs
type GinLogWriter struct {
	log *CtxZapLogger
}

// NewGinLogWriter creates the adapter
// module: "gin-route" for route registration, "gin-internal" for the rest
func NewGinLogWriter(module string) *GinLogWriter {
	return &GinLogWriter{log: GetLogger(module)}
}

// NewGinLogWriterWith uses an explicit logger instead of the global manager
func NewGinLogWriterWith(log *CtxZapLogger) *GinLogWriter {
	return &GinLogWriter{log: log}
}

// Write implements io.Writer
func (w *GinLogWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	switch {
	case strings.Contains(msg, "[GIN-debug]"):
		w.log.Debug(msg)
	case strings.Contains(msg, "[Recovery]") || strings.Contains(msg, "panic recovered"):
		w.log.Error(msg)
	default:
		w.log.Info(msg)
	}

	return len(p), nil
}
