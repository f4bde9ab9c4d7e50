package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"knead/config"
)

func sprintf(format string, args ...any) string { return fmt.Sprintf(format, args...) }

// Logger is a thin wrapper over slog configured from LoggerMode:
// text output in development, JSON in prod.
type Logger struct {
	l *slog.Logger
}

func NewLogger(cfg *config.Config) (*Logger, error) {
	level := parseLevel(cfg.LoggerMode.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LoggerMode.Prod && !cfg.LoggerMode.Development {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return &Logger{l: slog.New(handler)}, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (lg *Logger) handle() *slog.Logger {
	if lg == nil || lg.l == nil {
		return slog.Default()
	}
	return lg.l
}

func (lg Logger) Debug(msg string, args ...any) { lg.handle().Debug(msg, args...) }
func (lg Logger) Info(msg string, args ...any)  { lg.handle().Info(msg, args...) }
func (lg Logger) Warn(msg string, args ...any)  { lg.handle().Warn(msg, args...) }
func (lg Logger) Error(msg string, args ...any) { lg.handle().Error(msg, args...) }

func (lg Logger) Debugf(format string, args ...any) { lg.handle().Debug(sprintf(format, args...)) }
func (lg Logger) Infof(format string, args ...any)  { lg.handle().Info(sprintf(format, args...)) }
func (lg Logger) Warnf(format string, args ...any)  { lg.handle().Warn(sprintf(format, args...)) }
func (lg Logger) Errorf(format string, args ...any) { lg.handle().Error(sprintf(format, args...)) }
