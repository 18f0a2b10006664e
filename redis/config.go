package redis

import (
	"net"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config connection, keyspace and resilience settings for the Redis store
type Config struct {
	Host     string `mapstructure:"host" json:"host"`
	Port     int    `mapstructure:"port" json:"port"`
	Password string `mapstructure:"password" json:"password"`

	// Database number (0-15)
	DB int `mapstructure:"db" json:"db"`

	// KeyPrefix is prepended to every physical key (default "academia_pro:")
	KeyPrefix string `mapstructure:"key_prefix" json:"key_prefix"`

	// TTL default expiry in seconds for writes without an explicit TTL (default 3600)
	TTL int `mapstructure:"ttl" json:"ttl"`

	PoolSize     int           `mapstructure:"pool_size" json:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns" json:"min_idle_conns"`
	MaxRetries   int           `mapstructure:"max_retries" json:"max_retries"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout" json:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"write_timeout"`

	Breaker BreakerConfig `mapstructure:"breaker" json:"breaker"`
}

// BreakerConfig circuit breaker in front of every Redis command
type BreakerConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`

	// MinRequests before the failure ratio is evaluated
	MinRequests uint32 `mapstructure:"min_requests" json:"min_requests"`

	// FailureRatio that trips the breaker (0-1]
	FailureRatio float64 `mapstructure:"failure_ratio" json:"failure_ratio"`

	// Interval clears the counts while closed, 0 never clears
	Interval time.Duration `mapstructure:"interval" json:"interval"`

	// OpenTimeout before a half-open trial request is allowed
	OpenTimeout time.Duration `mapstructure:"open_timeout" json:"open_timeout"`

	// HalfOpenRequests allowed through while half-open
	HalfOpenRequests uint32 `mapstructure:"half_open_requests" json:"half_open_requests"`
}

// Addr host:port
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DefaultTTL returns TTL as a duration
func (c Config) DefaultTTL() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// ApplyDefaults fills zero values
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6379
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "academia_pro:"
	}
	if c.TTL == 0 {
		c.TTL = 3600
	}
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns == 0 {
		c.MinIdleConns = 5
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
	c.Breaker.applyDefaults()
}

func (c *BreakerConfig) applyDefaults() {
	if c.MinRequests == 0 {
		c.MinRequests = 5
	}
	if c.FailureRatio == 0 {
		c.FailureRatio = 0.6
	}
	if c.OpenTimeout == 0 {
		c.OpenTimeout = 30 * time.Second
	}
	if c.HalfOpenRequests == 0 {
		c.HalfOpenRequests = 1
	}
}

// Validate implements validation.Validatable
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DB, validation.Min(0), validation.Max(15)),
		validation.Field(&c.TTL, validation.Min(1)),
		validation.Field(&c.PoolSize, validation.Min(0)),
		validation.Field(&c.MinIdleConns, validation.Min(0)),
		validation.Field(&c.Breaker),
	)
}

// Validate implements validation.Validatable
func (c BreakerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.FailureRatio, validation.Min(0.0), validation.Max(1.0)),
	)
}
