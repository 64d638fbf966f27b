// Package logging builds the zap loggers used by command line tools.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes where log lines go.
type Config struct {
	// Level is one of debug, info, warn or error. Anything else means info.
	Level string
	// File enables a rotated log file at this path when set.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Console receives colored console output. Nil means stderr.
	Console io.Writer
	// Quiet disables console output.
	Quiet bool
}

// DefaultConfig returns a console-only info logger configuration with
// rotation defaults for file output.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
	}
}

// Logger is a zap logger with the file sink it may own.
type Logger struct {
	*zap.Logger

	file *lumberjack.Logger
}

// New builds a Logger from cfg.
func New(cfg Config) *Logger {
	lvl := ParseLevel(cfg.Level)
	cores := make([]zapcore.Core, 0, 2)

	if !cfg.Quiet {
		console := cfg.Console
		if console == nil {
			console = os.Stderr
		}
		enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			MessageKey:       "msg",
			CallerKey:        "caller",
			EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
			EncodeLevel:      zapcore.CapitalColorLevelEncoder,
			EncodeCaller:     zapcore.ShortCallerEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(console), lvl))
	}

	l := &Logger{}
	if cfg.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
			LocalTime:  true,
		}
		enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			MessageKey:       "msg",
			CallerKey:        "caller",
			EncodeTime:       zapcore.ISO8601TimeEncoder,
			EncodeLevel:      zapcore.CapitalLevelEncoder,
			EncodeCaller:     zapcore.ShortCallerEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(l.file), lvl))
	}

	l.Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller())

	return l
}

// Close flushes buffered entries and closes the log file, if any.
func (l *Logger) Close() error {
	_ = l.Sync()
	if l.file == nil {
		return nil
	}

	return l.file.Close()
}

// ParseLevel converts a level name to a zapcore.Level.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
