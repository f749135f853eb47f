package logger

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

var (
	validLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validEncodings = []string{"json", "console"}
)

// ManagerConfig global manager configuration (shared by all modules)
type ManagerConfig struct {
	BaseLogDir            string `mapstructure:"base_log_dir"` // Root directory of file output (default logs/)
	Level                 string `mapstructure:"level"`
	AppName               string `mapstructure:"app_name"` // Injected into every entry, even when empty
	Encoding              string `mapstructure:"encoding"` // json or console
	ConsoleEncoding       string `mapstructure:"console_encoding"`
	EnableConsole         bool   `mapstructure:"enable_console"`
	EnableFile            bool   `mapstructure:"enable_file"`
	EnableLevelInFilename bool   `mapstructure:"enable_level_in_filename"`
	EnableDateInFilename  bool   `mapstructure:"enable_date_in_filename"`
	DateFormat            string `mapstructure:"date_format"`
	MaxSize               int    `mapstructure:"max_size"`    // MB
	MaxBackups            int    `mapstructure:"max_backups"` // files
	MaxAge                int    `mapstructure:"max_age"`     // days
	Compress              bool   `mapstructure:"compress"`
	EnableCaller          bool   `mapstructure:"enable_caller"`
	EnableStacktrace      bool   `mapstructure:"enable_stacktrace"`
	StacktraceLevel       string `mapstructure:"stacktrace_level"`
	StacktraceDepth       int    `mapstructure:"stacktrace_depth"` // 0 = default depth
	LoggerName            string `mapstructure:"logger_name"`

	// Trace ID configuration
	EnableTraceID    bool   `mapstructure:"enable_trace_id"`
	TraceIDKey       string `mapstructure:"trace_id_key"`        // context key (default "trace_id")
	TraceIDFieldName string `mapstructure:"trace_id_field_name"` // log field (default "trace_id")
}

// DefaultManagerConfig console-only JSON logging at info level
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		BaseLogDir:            "logs",
		LoggerName:            "logger",
		Level:                 "info",
		Encoding:              "json",
		EnableConsole:         true,
		EnableFile:            false,
		EnableLevelInFilename: true,
		EnableDateInFilename:  true,
		DateFormat:            "2006-01-02",
		MaxSize:               100,
		MaxBackups:            3,
		MaxAge:                28,
		Compress:              true,
		EnableCaller:          true,
		EnableStacktrace:      true,
		StacktraceLevel:       "error",
		StacktraceDepth:       5,
		EnableTraceID:         true,
		TraceIDKey:            "trace_id",
		TraceIDFieldName:      "trace_id",
	}
}

// ApplyDefaults fills zero-valued fields in place.
// Booleans cannot be told apart from "unset" and keep their value.
func (c *ManagerConfig) ApplyDefaults() {
	d := DefaultManagerConfig()

	if c.BaseLogDir == "" {
		c.BaseLogDir = d.BaseLogDir
	}
	if c.LoggerName == "" {
		c.LoggerName = d.LoggerName
	}
	if c.Level == "" {
		c.Level = d.Level
	}
	if c.Encoding == "" {
		c.Encoding = d.Encoding
	}
	if c.DateFormat == "" {
		c.DateFormat = d.DateFormat
	}
	if c.StacktraceLevel == "" {
		c.StacktraceLevel = d.StacktraceLevel
	}
	if c.TraceIDKey == "" {
		c.TraceIDKey = d.TraceIDKey
	}
	if c.TraceIDFieldName == "" {
		c.TraceIDFieldName = d.TraceIDFieldName
	}
	if c.MaxSize == 0 {
		c.MaxSize = d.MaxSize
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = d.MaxBackups
	}
	if c.MaxAge == 0 {
		c.MaxAge = d.MaxAge
	}
}

// Validate implements config.Validator
func (c ManagerConfig) Validate() error {
	if !slices.Contains(validLevels, c.Level) {
		return fmt.Errorf("invalid log level: %s (valid values: %v)", c.Level, validLevels)
	}
	if !slices.Contains(validEncodings, c.Encoding) {
		return fmt.Errorf("invalid log encoding: %s (valid values: %v)", c.Encoding, validEncodings)
	}
	if c.ConsoleEncoding != "" && !slices.Contains(validEncodings, c.ConsoleEncoding) {
		return fmt.Errorf("invalid console encoding: %s (valid values: %v)", c.ConsoleEncoding, validEncodings)
	}
	if c.MaxSize < 1 || c.MaxSize > 10000 {
		return fmt.Errorf("MaxSize must be between 1-10000 MB, current: %d", c.MaxSize)
	}
	if c.MaxBackups < 0 || c.MaxBackups > 1000 {
		return fmt.Errorf("MaxBackups must be between 0-1000, current: %d", c.MaxBackups)
	}
	if c.MaxAge < 0 || c.MaxAge > 3650 {
		return fmt.Errorf("MaxAge must be between 0-3650 days, current: %d", c.MaxAge)
	}
	if !slices.Contains(validLevels, c.StacktraceLevel) {
		return fmt.Errorf("invalid stack trace level: %s (valid values: %v)", c.StacktraceLevel, validLevels)
	}
	return nil
}

// ParseLevel parse log level string (info on unknown input)
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// filePath builds the log file path of a module
// Formats:
//   - logs/server/server.log
//   - logs/server/server-info.log
//   - logs/server/server-info-2024-12-19.log
func (c ManagerConfig) filePath(module, level string) string {
	parts := []string{module}
	if c.EnableLevelInFilename {
		parts = append(parts, level)
	}
	if c.EnableDateInFilename {
		parts = append(parts, time.Now().Format(c.DateFormat))
	}
	return filepath.Join(c.BaseLogDir, module, strings.Join(parts, "-")+".log")
}
