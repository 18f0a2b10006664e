package httpx

import validation "github.com/go-ozzo/ozzo-validation/v4"

// ErrorLoggingConfig controls how HandleError logs failed requests
type ErrorLoggingConfig struct {
	Enable           bool   `mapstructure:"enable" json:"enable"`
	IgnoreHTTPStatus []int  `mapstructure:"ignore_http_status" json:"ignore_http_status"` // e.g. 400, 404
	FullErrorChain   bool   `mapstructure:"full_error_chain" json:"full_error_chain"`
	LogLevel         string `mapstructure:"log_level" json:"log_level"` // error, warn, info
}

// DefaultErrorLoggingConfig logs server-side failures, client errors stay quiet
func DefaultErrorLoggingConfig() ErrorLoggingConfig {
	return ErrorLoggingConfig{
		Enable:           true,
		IgnoreHTTPStatus: []int{400, 404},
		FullErrorChain:   true,
		LogLevel:         "error",
	}
}

// Validate implements validation.Validatable
func (c ErrorLoggingConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.LogLevel, validation.In("error", "warn", "info")),
	)
}
