package middleware

import (
	"github.com/Hycient195/academia-pro-cache/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TraceIDKeyDefault gin context key
	TraceIDKeyDefault = "trace_id"

	// TraceIDHeaderDefault request and response header
	TraceIDHeaderDefault = "X-Trace-ID"
)

// TraceConfig trace id middleware configuration
type TraceConfig struct {
	TraceIDKey           string
	TraceIDHeader        string
	EnableResponseHeader bool
	Generator            func() string // default uuid v4
}

// DefaultTraceConfig returns the default configuration
func DefaultTraceConfig() TraceConfig {
	return TraceConfig{
		TraceIDKey:           TraceIDKeyDefault,
		TraceIDHeader:        TraceIDHeaderDefault,
		EnableResponseHeader: true,
		Generator:            func() string { return uuid.New().String() },
	}
}

// TraceID resolves the request trace id and stores it on both contexts
// Priority: active OpenTelemetry span, inbound header, generated id
//
//	engine.Use(middleware.TraceID(middleware.DefaultTraceConfig()))
func TraceID(cfg TraceConfig) gin.HandlerFunc {
	if cfg.TraceIDKey == "" {
		cfg.TraceIDKey = TraceIDKeyDefault
	}
	if cfg.TraceIDHeader == "" {
		cfg.TraceIDHeader = TraceIDHeaderDefault
	}
	if cfg.Generator == nil {
		cfg.Generator = func() string { return uuid.New().String() }
	}

	return func(c *gin.Context) {
		var traceID string
		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		} else {
			traceID = c.GetHeader(cfg.TraceIDHeader)
			if traceID == "" {
				traceID = cfg.Generator()
			}
			c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))
		}

		c.Set(cfg.TraceIDKey, traceID)
		if cfg.EnableResponseHeader {
			c.Writer.Header().Set(cfg.TraceIDHeader, traceID)
		}

		c.Next()
	}
}

// GetTraceID returns the trace id stored under the default key
func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKeyDefault)
}
