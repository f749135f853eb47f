package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager logger manager (one CtxZapLogger per module)
type Manager struct {
	baseConfig ManagerConfig
	loggers    map[string]*CtxZapLogger        // module -> CtxZapLogger
	zapLoggers map[string]*zap.Logger          // module -> underlying zap.Logger
	writers    map[string][]*lumberjack.Logger // module -> file writers (closed on CloseAll)
	mu         sync.RWMutex
}

var (
	globalManager *Manager
	globalMu      sync.RWMutex
)

// NewManager creates an independent manager; zero-valued fields get defaults
func NewManager(cfg ManagerConfig) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		baseConfig: cfg,
		loggers:    make(map[string]*CtxZapLogger),
		zapLoggers: make(map[string]*zap.Logger),
		writers:    make(map[string][]*lumberjack.Logger),
	}
}

// InitManager installs the process-wide manager, replacing (and closing) a previous one
func InitManager(cfg ManagerConfig) *Manager {
	m := NewManager(cfg)

	globalMu.Lock()
	previous := globalManager
	globalManager = m
	globalMu.Unlock()

	if previous != nil {
		previous.CloseAll()
	}
	return m
}

// Global returns the process-wide manager, creating a default one on first use
func Global() *Manager {
	globalMu.RLock()
	m := globalManager
	globalMu.RUnlock()
	if m != nil {
		return m
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalManager == nil {
		globalManager = NewManager(DefaultManagerConfig())
	}
	return globalManager
}

// GetLogger returns the module logger of the process-wide manager
func GetLogger(module string) *CtxZapLogger {
	return Global().GetLogger(module)
}

// Config returns the effective configuration
func (m *Manager) Config() ManagerConfig {
	return m.baseConfig
}

// GetLogger returns the logger of a module, creating it on first use.
// The returned logger already carries the module field.
func (m *Manager) GetLogger(module string) *CtxZapLogger {
	m.mu.RLock()
	if l, ok := m.loggers[module]; ok {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[module]; ok {
		return l
	}

	base := m.createLogger(module).With(zap.String("module", module))
	l := &CtxZapLogger{
		base:   base.WithOptions(zap.AddCallerSkip(1)),
		module: module,
		config: &m.baseConfig,
	}
	m.loggers[module] = l
	m.zapLoggers[module] = base
	return l
}

func (m *Manager) createLogger(module string) *zap.Logger {
	cfg := m.baseConfig
	encoder := createEncoder(cfg.Encoding)
	level := ParseLevel(cfg.Level)
	var cores []zapcore.Core

	if cfg.EnableConsole {
		consoleEncoder := encoder
		if cfg.ConsoleEncoding != "" && cfg.ConsoleEncoding != cfg.Encoding {
			consoleEncoder = createEncoder(cfg.ConsoleEncoding)
		}
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level))
	}

	if cfg.EnableFile {
		infoWriter, infoLumber := createFileWriter(cfg.filePath(module, "info"), cfg)
		errorWriter, errorLumber := createFileWriter(cfg.filePath(module, "error"), cfg)
		m.writers[module] = []*lumberjack.Logger{infoLumber, errorLumber}

		// info file: configured level up to warn; error file: error and above
		cores = append(cores,
			zapcore.NewCore(encoder, infoWriter, zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= level && lvl < zapcore.ErrorLevel
			})),
			zapcore.NewCore(encoder, errorWriter, zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= zapcore.ErrorLevel
			})),
		)
	}

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	// stack traces are attached by CtxZapLogger.ErrorCtx with a bounded depth
	return zap.New(zapcore.NewTee(cores...), opts...)
}

// CloseAll flushes buffers and closes file handles
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
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if encoding == "console" {
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zapcore.NewJSONEncoder(encoderConfig)
}

// createFileWriter rotating file writer
func createFileWriter(filename string, cfg ManagerConfig) (zapcore.WriteSyncer, *lumberjack.Logger) {
	_ = os.MkdirAll(filepath.Dir(filename), 0o755)

	lumber := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
	return zapcore.AddSync(lumber), lumber
}
