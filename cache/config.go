package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config policy settings for the cache service
type Config struct {
	// DefaultTTL for writes without WithTTL (falls back to the store TTL)
	DefaultTTL time.Duration `mapstructure:"default_ttl" json:"default_ttl"`

	// DefaultPrefix namespace for GenerateKey when none is given (default "cache")
	DefaultPrefix string `mapstructure:"default_prefix" json:"default_prefix"`

	// APIResponseTTL default for CacheAPIResponse (default 5m)
	APIResponseTTL time.Duration `mapstructure:"api_response_ttl" json:"api_response_ttl"`

	// QueryResultTTL default for CacheQueryResult (default 10m)
	QueryResultTTL time.Duration `mapstructure:"query_result_ttl" json:"query_result_ttl"`

	UserPrefix   string `mapstructure:"user_prefix" json:"user_prefix"`
	SchoolPrefix string `mapstructure:"school_prefix" json:"school_prefix"`
}

// ApplyDefaults fills zero values; storeTTL is the store's default expiry
func (c *Config) ApplyDefaults(storeTTL time.Duration) {
	if c.DefaultTTL == 0 {
		c.DefaultTTL = storeTTL
	}
	if c.DefaultTTL == 0 {
		c.DefaultTTL = time.Hour
	}
	if c.DefaultPrefix == "" {
		c.DefaultPrefix = "cache"
	}
	if c.APIResponseTTL == 0 {
		c.APIResponseTTL = 5 * time.Minute
	}
	if c.QueryResultTTL == 0 {
		c.QueryResultTTL = 10 * time.Minute
	}
	if c.UserPrefix == "" {
		c.UserPrefix = "user"
	}
	if c.SchoolPrefix == "" {
		c.SchoolPrefix = "school"
	}
}

// Validate implements validation.Validatable
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DefaultTTL, validation.Min(time.Second)),
		validation.Field(&c.DefaultPrefix, validation.Required),
		validation.Field(&c.APIResponseTTL, validation.Min(time.Second)),
		validation.Field(&c.QueryResultTTL, validation.Min(time.Second)),
		validation.Field(&c.UserPrefix, validation.Required),
		validation.Field(&c.SchoolPrefix, validation.Required),
	)
}
