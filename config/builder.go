package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
)

// LoaderBuilder assembles the standard source stack
type LoaderBuilder struct {
	configPath  string
	envPrefix   string
	flags       *pflag.FlagSet
	flagMapping map[string]string
}

// NewLoaderBuilder creates a builder
func NewLoaderBuilder() *LoaderBuilder {
	return &LoaderBuilder{}
}

// WithConfigPath sets the directory holding config.yaml and <env>.yaml
func (b *LoaderBuilder) WithConfigPath(path string) *LoaderBuilder {
	b.configPath = path
	return b
}

// WithEnvPrefix enables PREFIX_SECTION_FIELD scanning
func (b *LoaderBuilder) WithEnvPrefix(prefix string) *LoaderBuilder {
	b.envPrefix = prefix
	return b
}

// WithFlags adds changed command line flags as the highest priority source
func (b *LoaderBuilder) WithFlags(flags *pflag.FlagSet, mapping map[string]string) *LoaderBuilder {
	b.flags = flags
	b.flagMapping = mapping
	return b
}

// Build creates and loads the loader
func (b *LoaderBuilder) Build() (*Loader, error) {
	loader := NewLoader()

	if b.configPath != "" {
		loader.AddSource(NewFileSource(filepath.Join(b.configPath, "config.yaml"), 10))
		if env := GetEnv(); env != "" {
			loader.AddSource(NewFileSource(filepath.Join(b.configPath, env+".yaml"), 20))
		}
	}

	// REDIS_* are always honoured, with or without a prefix
	loader.AddSource(RedisBindings(NewEnvSource(b.envPrefix, 50)))

	if b.flags != nil {
		loader.AddSource(NewFlagSource(b.flags, b.flagMapping, 100))
	}

	if err := loader.Load(); err != nil {
		return nil, err
	}
	return loader, nil
}

// GetEnv returns APP_ENV, then ENV, then "dev"
func GetEnv() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "dev"
}
