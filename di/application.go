package di

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Hycient195/academia-pro-cache/cache"
	"github.com/Hycient195/academia-pro-cache/config"
	"github.com/Hycient195/academia-pro-cache/logger"
	"github.com/samber/do/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// AppState application lifecycle state
type AppState int

const (
	StateInit AppState = iota
	StateSetup
	StateRunning
	StateStopping
	StateStopped
)

// String state name
func (s AppState) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateSetup:
		return "Setup"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Application owns the injector and the process lifecycle
type Application struct {
	injector *do.RootScope

	configOpts ConfigOptions
	config     *config.AppConfig

	logger    *logger.CtxZapLogger
	loggerMgr *logger.Manager

	ctx    context.Context
	cancel context.CancelFunc
	state  AppState
	mu     sync.RWMutex

	name    string
	version string

	onSetup    func(*Application) error
	onReady    func(*Application) error
	onShutdown func(context.Context) error
}

// AppOption configures an Application
type AppOption func(*Application)

// WithConfigPath sets the config directory
func WithConfigPath(path string) AppOption {
	return func(app *Application) {
		app.configOpts.ConfigPath = path
	}
}

// WithEnvPrefix enables prefixed environment overrides
func WithEnvPrefix(prefix string) AppOption {
	return func(app *Application) {
		app.configOpts.EnvPrefix = prefix
	}
}

// WithFlags adds changed command line flags as the top config layer
func WithFlags(flags *pflag.FlagSet, mapping map[string]string) AppOption {
	return func(app *Application) {
		app.configOpts.Flags = flags
		app.configOpts.FlagMapping = mapping
	}
}

// WithName sets the application name
func WithName(name string) AppOption {
	return func(app *Application) {
		app.name = name
	}
}

// WithVersion sets the application version
func WithVersion(version string) AppOption {
	return func(app *Application) {
		app.version = version
	}
}

// WithOnSetup runs after providers are registered
func WithOnSetup(fn func(*Application) error) AppOption {
	return func(app *Application) {
		app.onSetup = fn
	}
}

// WithOnReady runs once the application is running
func WithOnReady(fn func(*Application) error) AppOption {
	return func(app *Application) {
		app.onReady = fn
	}
}

// WithOnShutdown runs before the injector shuts down
func WithOnShutdown(fn func(context.Context) error) AppOption {
	return func(app *Application) {
		app.onShutdown = fn
	}
}

// NewApplication creates an application with an empty injector
func NewApplication(opts ...AppOption) *Application {
	ctx, cancel := context.WithCancel(context.Background())

	app := &Application{
		injector:   do.New(),
		configOpts: ConfigOptions{ConfigPath: "./configs"},
		ctx:        ctx,
		cancel:     cancel,
		state:      StateInit,
		name:       "academia-cache",
		version:    "0.0.1",
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Injector returns the root scope
func (app *Application) Injector() *do.RootScope {
	return app.injector
}

// Logger application logger, nil before Setup
func (app *Application) Logger() *logger.CtxZapLogger {
	return app.logger
}

// Config effective configuration, nil before Setup
func (app *Application) Config() *config.AppConfig {
	return app.config
}

// Context is cancelled when shutdown starts
func (app *Application) Context() context.Context {
	return app.ctx
}

// CacheService resolves the cache service
func (app *Application) CacheService() (*cache.Service, error) {
	return do.Invoke[*cache.Service](app.injector)
}

// State current lifecycle state
func (app *Application) State() AppState {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.state
}

func (app *Application) setState(state AppState) {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.state = state
}

// Setup loads configuration, builds the logger and registers providers
func (app *Application) Setup() error {
	app.setState(StateSetup)

	do.Provide(app.injector, ProvideConfigLoader(app.configOpts))
	RegisterCacheProviders(app.injector)

	cfg, err := do.Invoke[*config.AppConfig](app.injector)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	app.config = cfg

	if mgr, err := do.Invoke[*logger.Manager](app.injector); err == nil {
		app.loggerMgr = mgr
	}
	do.Provide(app.injector, ProvideCtxLogger(app.name))
	appLogger, err := do.Invoke[*logger.CtxZapLogger](app.injector)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	app.logger = appLogger

	app.logger.Info("application setting up",
		zap.String("name", app.name),
		zap.String("version", app.version),
		zap.String("config_path", app.configOpts.ConfigPath),
		zap.String("redis", cfg.Redis.Addr()),
	)

	if app.onSetup != nil {
		if err := app.onSetup(app); err != nil {
			return fmt.Errorf("setup hook: %w", err)
		}
	}
	return nil
}

// Start resolves the cache stack and reports backend reachability
// An unreachable redis is logged but does not stop startup
func (app *Application) Start() error {
	svc, err := app.CacheService()
	if err != nil {
		return fmt.Errorf("init cache service: %w", err)
	}

	app.setState(StateRunning)

	if !svc.Ping(app.ctx) {
		app.logger.Warn("redis unreachable, serving uncached until it recovers",
			zap.String("addr", app.config.Redis.Addr()))
	}

	app.logger.Info("application started",
		zap.String("name", app.name),
		zap.String("state", app.State().String()),
	)

	if app.onReady != nil {
		if err := app.onReady(app); err != nil {
			return fmt.Errorf("ready hook: %w", err)
		}
	}
	return nil
}

// Run sets up, starts and blocks until SIGINT or SIGTERM
func (app *Application) Run() error {
	if err := app.Setup(); err != nil {
		return err
	}
	if err := app.Start(); err != nil {
		return err
	}
	app.waitForSignal()
	return nil
}

func (app *Application) waitForSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("shutdown signal received", zap.String("signal", sig.String()))

	timeout := 30 * time.Second
	if app.config != nil && app.config.HTTP.ShutdownTimeout > 0 {
		timeout = app.config.HTTP.ShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		app.logger.Error("shutdown failed", zap.Error(err))
	}
}

// Shutdown runs the hook, then the injector closes services in reverse order
func (app *Application) Shutdown(ctx context.Context) error {
	app.setState(StateStopping)
	log := app.logger
	if log == nil {
		log = logger.NewNop()
	}
	log.Info("shutting down")

	if app.onShutdown != nil {
		if err := app.onShutdown(ctx); err != nil {
			log.Warn("shutdown hook failed", zap.Error(err))
		}
	}

	app.cancel()

	if err := app.injector.Shutdown(); err != nil {
		log.Warn("injector shutdown failed", zap.Error(err))
	}

	app.setState(StateStopped)
	log.Info("application stopped")

	if app.loggerMgr != nil {
		app.loggerMgr.CloseAll()
	}
	return nil
}
