// Package telemetry sets up the OpenTelemetry metrics pipeline
package telemetry

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// MetricsConfig metrics export settings
type MetricsConfig struct {
	Enabled  bool          `mapstructure:"enabled" json:"enabled"`
	Exporter string        `mapstructure:"exporter" json:"exporter"` // stdout or otlp
	Endpoint string        `mapstructure:"endpoint" json:"endpoint"` // otlp collector host:port
	Insecure bool          `mapstructure:"insecure" json:"insecure"`
	Interval time.Duration `mapstructure:"interval" json:"interval"`
	Timeout  time.Duration `mapstructure:"timeout" json:"timeout"`

	// ResourceAttrs extra resource attributes, nested maps are flattened with dots
	ResourceAttrs map[string]interface{} `mapstructure:"resource_attrs" json:"resource_attrs"`
}

// ApplyDefaults fills zero values
func (c *MetricsConfig) ApplyDefaults() {
	if c.Exporter == "" {
		c.Exporter = ExporterStdout
	}
	if c.Interval == 0 {
		c.Interval = 60 * time.Second
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// Validate implements validation.Validatable
func (c MetricsConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Exporter, validation.In(ExporterStdout, ExporterOTLP)),
		validation.Field(&c.Endpoint, validation.When(c.Enabled && c.Exporter == ExporterOTLP, validation.Required)),
		validation.Field(&c.Interval, validation.When(c.Enabled, validation.Min(time.Second))),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}
