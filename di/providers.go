package di

import (
	"context"

	"github.com/Hycient195/academia-pro-cache/cache"
	"github.com/Hycient195/academia-pro-cache/config"
	"github.com/Hycient195/academia-pro-cache/health"
	"github.com/Hycient195/academia-pro-cache/jobs"
	"github.com/Hycient195/academia-pro-cache/logger"
	"github.com/Hycient195/academia-pro-cache/redis"
	"github.com/Hycient195/academia-pro-cache/telemetry"
	"github.com/samber/do/v2"
	"github.com/spf13/pflag"
)

// Version reported in telemetry resources; overridden at link time
var Version = "0.0.1"

// ConfigOptions config loader options
type ConfigOptions struct {
	ConfigPath  string            // directory with config.yaml and <env>.yaml
	EnvPrefix   string            // PREFIX_SECTION_FIELD scanning, empty disables it
	Flags       *pflag.FlagSet    // command line overrides
	FlagMapping map[string]string // flag name -> config key
}

// ProvideConfigLoader builds the layered loader; it has no dependencies
func ProvideConfigLoader(opts ConfigOptions) func(do.Injector) (*config.Loader, error) {
	return func(i do.Injector) (*config.Loader, error) {
		return config.NewLoaderBuilder().
			WithConfigPath(opts.ConfigPath).
			WithEnvPrefix(opts.EnvPrefix).
			WithFlags(opts.Flags, opts.FlagMapping).
			Build()
	}
}

// ProvideAppConfig decodes, defaults and validates the whole configuration
func ProvideAppConfig(i do.Injector) (*config.AppConfig, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}
	return config.Load(loader)
}

// ProvideLoggerManager falls back to defaults when no config is registered
func ProvideLoggerManager(i do.Injector) (*logger.Manager, error) {
	cfg, err := do.Invoke[*config.AppConfig](i)
	if err != nil {
		return logger.NewManager(logger.DefaultManagerConfig()), nil
	}
	return logger.NewManager(cfg.Logger), nil
}

// ProvideCtxLogger returns a provider for the named module logger
func ProvideCtxLogger(module string) func(do.Injector) (*logger.CtxZapLogger, error) {
	return func(i do.Injector) (*logger.CtxZapLogger, error) {
		mgr, err := do.Invoke[*logger.Manager](i)
		if err != nil {
			return logger.GetLogger(module), nil
		}
		return mgr.GetLogger(module), nil
	}
}

// ProvideMetricsManager installs the global MeterProvider when metrics are enabled
// The injector flushes and stops it through MetricsManager.Shutdown
func ProvideMetricsManager(i do.Injector) (*telemetry.MetricsManager, error) {
	cfg, err := do.Invoke[*config.AppConfig](i)
	if err != nil {
		return nil, err
	}
	return telemetry.NewMetricsManager(context.Background(), cfg.Metrics, cfg.Logger.AppName, Version)
}

// ProvideStoreMetrics is nil when metrics are disabled
func ProvideStoreMetrics(i do.Injector) (*redis.StoreMetrics, error) {
	mgr, err := do.Invoke[*telemetry.MetricsManager](i)
	if err != nil {
		return nil, err
	}
	if !mgr.IsEnabled() {
		return nil, nil
	}
	return redis.NewStoreMetrics(mgr.Meter("academia-cache/redis"))
}

// ProvideRedisStore creates the store; no connection is made here
// The injector closes it on shutdown through Store.Shutdown
func ProvideRedisStore(i do.Injector) (*redis.Store, error) {
	cfg, err := do.Invoke[*config.AppConfig](i)
	if err != nil {
		return nil, err
	}
	mgr, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}

	var opts []redis.Option
	if m, err := do.Invoke[*redis.StoreMetrics](i); err == nil && m != nil {
		opts = append(opts, redis.WithMetrics(m))
	}
	return redis.NewStore(cfg.Redis, mgr.GetLogger("redis"), opts...)
}

// ProvideCacheService builds the cache service over the redis store
func ProvideCacheService(i do.Injector) (*cache.Service, error) {
	cfg, err := do.Invoke[*config.AppConfig](i)
	if err != nil {
		return nil, err
	}
	mgr, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}
	store, err := do.Invoke[*redis.Store](i)
	if err != nil {
		return nil, err
	}
	return cache.NewService(store, cfg.Cache, mgr.GetLogger("cache"))
}

// ProvideHealthAggregator registers redis as an advisory check
// The cache degrades instead of failing when redis is down
func ProvideHealthAggregator(i do.Injector) (*health.Aggregator, error) {
	store, err := do.Invoke[*redis.Store](i)
	if err != nil {
		return nil, err
	}
	agg := health.NewAggregator(0)
	agg.RegisterAdvisory(redis.NewHealthChecker(store))
	if cfg, err := do.Invoke[*config.AppConfig](i); err == nil {
		agg.SetMetadata("app", cfg.Logger.AppName)
		agg.SetMetadata("redis", cfg.Redis.Addr())
	}
	return agg, nil
}

// ProvideScheduler creates the job scheduler; the injector stops it on shutdown
func ProvideScheduler(i do.Injector) (*jobs.Scheduler, error) {
	cfg, err := do.Invoke[*config.AppConfig](i)
	if err != nil {
		return nil, err
	}
	mgr, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}
	return jobs.NewScheduler(cfg.Jobs, mgr.GetLogger("jobs"))
}

// RegisterCacheProviders registers every provider below the config loader
func RegisterCacheProviders(injector do.Injector) {
	do.Provide(injector, ProvideAppConfig)
	do.Provide(injector, ProvideLoggerManager)
	do.Provide(injector, ProvideMetricsManager)
	do.Provide(injector, ProvideStoreMetrics)
	do.Provide(injector, ProvideRedisStore)
	do.Provide(injector, ProvideCacheService)
	do.Provide(injector, ProvideHealthAggregator)
	do.Provide(injector, ProvideScheduler)
}

// NewContainer returns a root scope with the full provider graph registered
// Nothing is constructed until the first Invoke; Shutdown closes the redis client
func NewContainer(opts ConfigOptions) *do.RootScope {
	injector := do.New()
	do.Provide(injector, ProvideConfigLoader(opts))
	RegisterCacheProviders(injector)
	return injector
}
