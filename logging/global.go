package logging

import (
	"log/slog"
	"os"

	"github.com/giygas/prescription-assistant/config"
)

type LoggingService struct {
	Logger *slog.Logger
	writer *RotatingWriter
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger. An empty logDir logs to the
// console only, which is what tests use.
func InitLogger(logDir string) {
	initLogger(Options{Dir: logDir, RetentionWeeks: 4, MaxFileSize: 100 * 1024 * 1024, ConsoleLevel: slog.LevelInfo})
}

// InitLoggerWithConfig initializes the global logger from the app configuration
func InitLoggerWithConfig(logDir string, cfg *config.Config) {
	initLogger(Options{
		Dir:            logDir,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
		ConsoleLevel:   GetConsoleLogLevel(cfg.Env, cfg.LogLevel, os.Getenv("VERBOSE") != ""),
	})
}

func initLogger(opts Options) {
	Close()
	logger, writer := NewLogger(opts)
	DefaultLoggingService = &LoggingService{Logger: logger, writer: writer}
	slog.SetDefault(logger)
}

// Close releases the log file of the global logger, if any
func Close() {
	if DefaultLoggingService == nil || DefaultLoggingService.writer == nil {
		return
	}
	if err := DefaultLoggingService.writer.Close(); err != nil {
		slog.Warn("Failed to close log file", "error", err)
	}
	DefaultLoggingService.writer = nil
}

// logger returns the global logger, or a console fallback before InitLogger
func logger(level slog.Level) *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	logger(slog.LevelInfo).Info(msg, args...)
}

func Error(msg string, args ...any) {
	logger(slog.LevelError).Error(msg, args...)
}

func Warn(msg string, args ...any) {
	logger(slog.LevelWarn).Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	logger(slog.LevelDebug).Debug(msg, args...)
}
