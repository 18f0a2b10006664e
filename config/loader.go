package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Loader merges configuration sources by priority into a viper instance
type Loader struct {
	sources      []ConfigSource
	mergedConfig map[string]interface{}
	v            *viper.Viper
	loadedFiles  []string
}

// NewLoader creates an empty loader
func NewLoader() *Loader {
	return &Loader{
		sources:      make([]ConfigSource, 0),
		mergedConfig: make(map[string]interface{}),
		v:            viper.New(),
	}
}

// AddSource adds a data source
func (l *Loader) AddSource(source ConfigSource) {
	l.sources = append(l.sources, source)
}

// Load reads every source, low priority first, later keys override earlier ones
func (l *Loader) Load() error {
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	l.mergedConfig = make(map[string]interface{})
	l.loadedFiles = l.loadedFiles[:0]
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("load source %s: %w", source.Name(), err)
		}
		if fs, ok := source.(*FileSource); ok {
			l.loadedFiles = append(l.loadedFiles, fs.path)
		}
		for key, value := range data {
			l.mergedConfig[strings.ToLower(key)] = value
		}
	}

	l.syncToViper()
	return nil
}

// syncToViper rebuilds the viper instance from the merged flat map
func (l *Loader) syncToViper() {
	nested := make(map[string]interface{})
	for key, value := range l.mergedConfig {
		setNestedValue(nested, key, value)
	}

	l.v = viper.New()
	for key, value := range nested {
		l.v.Set(key, value)
	}
}

// setNestedValue {"redis.port": 6379} -> {"redis": {"port": 6379}}
func setNestedValue(m map[string]interface{}, key string, value interface{}) {
	parts := strings.Split(key, ".")
	current := m
	for _, k := range parts[:len(parts)-1] {
		if k == "" {
			continue
		}
		next, ok := current[k].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			current[k] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// Unmarshal decodes the merged configuration into v
func (l *Loader) Unmarshal(v interface{}) error {
	return l.v.Unmarshal(v)
}

// UnmarshalKey decodes one section, e.g. "redis"
func (l *Loader) UnmarshalKey(key string, v interface{}) error {
	return l.v.UnmarshalKey(key, v)
}

// Get returns a raw value
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

// GetString returns a string value
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// GetInt returns an int value
func (l *Loader) GetInt(key string) int {
	return l.v.GetInt(key)
}

// IsSet reports whether any source set the key
func (l *Loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}

// GetLoadedFiles lists the files that were read
func (l *Loader) GetLoadedFiles() []string {
	return l.loadedFiles
}

// GetViper returns the underlying viper instance
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}
