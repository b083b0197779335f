package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity of log messages
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	logPath string
)

// DefaultPath returns ~/.eino-browser-demo/app.log
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".eino-browser-demo", "app.log"), nil
}

// Init initializes the logger writing to path. An empty path uses DefaultPath.
// Until Init is called every log call is discarded.
func Init(path string, level LogLevel) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(level.zapLevel())
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.DisableStacktrace = true
	cfg.Sampling = nil
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	mu.Lock()
	old := base
	base = l
	logPath = path
	mu.Unlock()
	_ = old.Sync()

	Info("LOGGER", "logging initialized")
	return nil
}

// Close flushes the log file and discards further messages
func Close() error {
	mu.Lock()
	l := base
	base = zap.NewNop()
	logPath = ""
	mu.Unlock()

	l.Info("logging shutdown", zap.String("category", "LOGGER"))
	return l.Sync()
}

// L returns the underlying zap logger for callers that want structured fields
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Debug logs a debug message
func Debug(category, message string) {
	L().Debug(message, zap.String("category", category))
}

// Info logs an info message
func Info(category, message string) {
	L().Info(message, zap.String("category", category))
}

// Warn logs a warning message
func Warn(category, message string) {
	L().Warn(message, zap.String("category", category))
}

// Error logs an error message
func Error(category, message string) {
	L().Error(message, zap.String("category", category))
}

// GetLogPath returns the current log file path, empty when not initialized
func GetLogPath() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}
