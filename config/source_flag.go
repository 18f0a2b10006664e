package config

import (
	"github.com/spf13/pflag"
)

// FlagSource reads explicitly set command line flags
// Only flags the user changed are returned, so defaults never mask files or env
type FlagSource struct {
	flags    *pflag.FlagSet
	mapping  map[string]string // flag name -> config key
	priority int
}

// NewFlagSource creates a flag source over a cobra/pflag flag set
func NewFlagSource(flags *pflag.FlagSet, mapping map[string]string, priority int) *FlagSource {
	return &FlagSource{flags: flags, mapping: mapping, priority: priority}
}

// Name of the source
func (s *FlagSource) Name() string {
	return "flags"
}

// Priority of the source
func (s *FlagSource) Priority() int {
	return s.priority
}

// Load returns the changed flags keyed by their config key
func (s *FlagSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})
	if s.flags == nil {
		return result, nil
	}

	for name, key := range s.mapping {
		f := s.flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		result[key] = f.Value.String()
	}
	return result, nil
}
