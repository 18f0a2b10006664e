package config

import (
	"time"

	"github.com/Hycient195/academia-pro-cache/cache"
	"github.com/Hycient195/academia-pro-cache/httpx"
	"github.com/Hycient195/academia-pro-cache/jobs"
	"github.com/Hycient195/academia-pro-cache/logger"
	"github.com/Hycient195/academia-pro-cache/redis"
	"github.com/Hycient195/academia-pro-cache/telemetry"
	"github.com/Hycient195/academia-pro-cache/validator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// AppConfig aggregates every section the process reads
type AppConfig struct {
	Redis   redis.Config            `mapstructure:"redis"`
	Cache   cache.Config            `mapstructure:"cache"`
	Logger  logger.ManagerConfig    `mapstructure:"logger"`
	HTTP    HTTPConfig              `mapstructure:"http"`
	Metrics telemetry.MetricsConfig `mapstructure:"metrics"`
	Jobs    jobs.Config             `mapstructure:"jobs"`
}

// HTTPConfig admin API and response cache settings
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CacheResponses  bool          `mapstructure:"cache_responses"`
	ResponseTTL     time.Duration `mapstructure:"response_ttl"`
	SkipPaths       []string      `mapstructure:"skip_paths"`

	ErrorLogging httpx.ErrorLoggingConfig `mapstructure:"error_logging"`
}

// ApplyDefaults fills zero values section by section
func (c *AppConfig) ApplyDefaults() {
	c.Redis.ApplyDefaults()
	c.Cache.ApplyDefaults(c.Redis.DefaultTTL())
	c.Logger.ApplyDefaults()
	if !c.Logger.EnableConsole && !c.Logger.EnableFile {
		c.Logger.EnableConsole = true
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.Mode == "" {
		c.HTTP.Mode = "release"
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.HTTP.ResponseTTL == 0 {
		c.HTTP.ResponseTTL = c.Cache.APIResponseTTL
	}
	if len(c.HTTP.SkipPaths) == 0 {
		c.HTTP.SkipPaths = []string{"/health", "/admin"}
	}
	if c.HTTP.ErrorLogging.LogLevel == "" {
		c.HTTP.ErrorLogging = httpx.DefaultErrorLoggingConfig()
	}
	c.Metrics.ApplyDefaults()
	c.Jobs.ApplyDefaults()
}

// Validate implements validation.Validatable
func (c HTTPConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.Mode, validation.In("debug", "release", "test")),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.ResponseTTL, validation.Min(time.Second)),
		validation.Field(&c.ErrorLogging),
	)
}

// Validate checks every section; field errors are reported as a LayeredError
func (c AppConfig) Validate() error {
	return validator.ValidateRequest(appConfigRules{c})
}

type appConfigRules struct {
	AppConfig
}

func (r appConfigRules) Validate() error {
	c := r.AppConfig
	return validation.Errors{
		"redis":   c.Redis.Validate(),
		"cache":   c.Cache.Validate(),
		"logger":  c.Logger.Validate(),
		"http":    c.HTTP.Validate(),
		"metrics": c.Metrics.Validate(),
		"jobs":    c.Jobs.Validate(),
	}.Filter()
}

// Load builds the configuration from the loader, applies defaults and validates
func Load(loader *Loader) (*AppConfig, error) {
	var cfg AppConfig
	if err := loader.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
