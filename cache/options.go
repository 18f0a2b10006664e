package cache

import "time"

// Options per-call overrides
type Options struct {
	TTL    time.Duration
	Prefix string
}

// Option sets one override
type Option func(*Options)

// WithTTL overrides the default TTL
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.TTL = ttl
	}
}

// WithPrefix overrides the namespace used by GenerateKey
func WithPrefix(prefix string) Option {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

func (s *Service) resolve(opts []Option) Options {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.TTL <= 0 {
		o.TTL = s.cfg.DefaultTTL
	}
	if o.Prefix == "" {
		o.Prefix = s.cfg.DefaultPrefix
	}
	return o
}
