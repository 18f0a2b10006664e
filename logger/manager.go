package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager owns one logger per module
type Manager struct {
	baseConfig ManagerConfig
	loggers    map[string]*CtxZapLogger
	zapLoggers map[string]*zap.Logger
	writers    map[string][]*lumberjack.Logger // module -> file writers (closed by CloseAll)
	mu         sync.RWMutex
}

var (
	globalManager *Manager
	managerMu     sync.Mutex
)

// NewManager creates an independent Manager
// Zero-valued fields of cfg are filled with defaults
func NewManager(cfg ManagerConfig) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		baseConfig: cfg,
		loggers:    make(map[string]*CtxZapLogger),
		zapLoggers: make(map[string]*zap.Logger),
		writers:    make(map[string][]*lumberjack.Logger),
	}
}

// GetLogger returns the module logger, creating it on first use
// The returned logger already carries the module field
func (m *Manager) GetLogger(module string) *CtxZapLogger {
	m.mu.RLock()
	if l, ok := m.loggers[module]; ok {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double check, another goroutine may have created it
	if l, ok := m.loggers[module]; ok {
		return l
	}

	base := m.createLogger(module).With(zap.String("module", module))
	l := &CtxZapLogger{
		// Skip the CtxZapLogger wrapper frame when reporting the caller
		base:   base.WithOptions(zap.AddCallerSkip(1)),
		module: module,
		config: &m.baseConfig,
	}

	m.loggers[module] = l
	m.zapLoggers[module] = base
	return l
}

// Config returns the effective configuration
func (m *Manager) Config() ManagerConfig {
	return m.baseConfig
}

func (m *Manager) createLogger(module string) *zap.Logger {
	cfg := m.baseConfig
	encoder := createEncoder(cfg.Encoding)
	level := ParseLevel(cfg.Level)

	var cores []zapcore.Core
	if cfg.EnableConsole {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	}

	if cfg.EnableFile {
		infoWriter := m.fileWriter(module, cfg.moduleFilePath(module, "info"))
		cores = append(cores, zapcore.NewCore(encoder, infoWriter,
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= level && lvl < zapcore.ErrorLevel
			})))

		errorWriter := m.fileWriter(module, cfg.moduleFilePath(module, "error"))
		cores = append(cores, zapcore.NewCore(encoder, errorWriter,
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= zapcore.ErrorLevel
			})))
	}

	if len(cores) == 0 {
		return zap.NewNop()
	}

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	// Stacks are added by CtxZapLogger.ErrorCtx with a bounded depth, not zap.AddStacktrace

	return zap.New(zapcore.NewTee(cores...), opts...)
}

// fileWriter creates a rotating writer and remembers it for CloseAll
// Called with m.mu held
func (m *Manager) fileWriter(module, filename string) zapcore.WriteSyncer {
	_ = os.MkdirAll(filepath.Dir(filename), 0o755)

	lj := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    m.baseConfig.MaxSize,
		MaxBackups: m.baseConfig.MaxBackups,
		MaxAge:     m.baseConfig.MaxAge,
		Compress:   m.baseConfig.Compress,
		LocalTime:  true,
	}
	m.writers[module] = append(m.writers[module], lj)
	return zapcore.AddSync(lj)
}

// CloseAll flushes buffers and closes file handles (call on exit)
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.zapLoggers {
		_ = l.Sync()
	}
	for _, writers := range m.writers {
		for _, w := range writers {
			_ = w.Close()
		}
	}

	m.loggers = make(map[string]*CtxZapLogger)
	m.zapLoggers = make(map[string]*zap.Logger)
	m.writers = make(map[string][]*lumberjack.Logger)
}

func createEncoder(encoding string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		CallerKey:      "caller",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if encoding == "console" {
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zapcore.NewJSONEncoder(encoderConfig)
}

// ============================================
// Package-level helpers backed by the global manager
// ============================================

// InitManager replaces the global manager (normally called once at startup)
func InitManager(cfg ManagerConfig) *Manager {
	managerMu.Lock()
	defer managerMu.Unlock()

	if globalManager != nil {
		globalManager.CloseAll()
	}
	globalManager = NewManager(cfg)
	return globalManager
}

// GetLogger returns a module logger from the global manager
func GetLogger(module string) *CtxZapLogger {
	managerMu.Lock()
	if globalManager == nil {
		globalManager = NewManager(DefaultManagerConfig())
	}
	m := globalManager
	managerMu.Unlock()

	return m.GetLogger(module)
}

// CloseAll closes the global manager
func CloseAll() {
	managerMu.Lock()
	defer managerMu.Unlock()

	if globalManager != nil {
		globalManager.CloseAll()
	}
}
