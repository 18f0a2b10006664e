package config

// ConfigSource is a configuration data source (file, environment, flags)
type ConfigSource interface {
	// Name for logs and debugging
	Name() string

	// Priority, higher wins:
	//   config.yaml 10, <env>.yaml 20, environment variables 50, flags 100
	Priority() int

	// Load returns a flat map keyed by dotted paths, e.g. "redis.port"
	Load() (map[string]interface{}, error)
}
