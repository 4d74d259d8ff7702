// Package logging provides structured logging with file and console output.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents logging levels
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Logger wraps zerolog with an optional log file
type Logger struct {
	zlog    zerolog.Logger
	file    *os.File
	logPath string
}

// Config holds logger configuration
type Config struct {
	LogDir  string   // Directory for log files; empty disables the file
	Level   LogLevel // Minimum log level (default: info)
	Console bool     // Also log to the console
	Out     io.Writer
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		LogDir:  filepath.Join(home, ".heroavatar", "logs"),
		Level:   LevelInfo,
		Console: true,
	}
}

// ParseLevel maps a level name to a zerolog level. Unknown names are info.
func ParseLevel(s string) zerolog.Level {
	switch LogLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

// New creates a new Logger with file and console output
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var writers []io.Writer
	logger := &Logger{}

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		logFileName := fmt.Sprintf("heroavatar_%s.log", time.Now().Format("2006-01-02"))
		logger.logPath = filepath.Join(cfg.LogDir, logFileName)

		file, err := os.OpenFile(logger.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.file = file
		writers = append(writers, file)
	}

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
	if cfg.Out != nil {
		writers = append(writers, cfg.Out)
	}

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = zerolog.MultiLevelWriter(writers...)
	}

	logger.zlog = zerolog.New(out).
		Level(ParseLevel(string(cfg.Level))).
		With().
		Timestamp().
		Str("app", "heroavatar").
		Logger()

	if logger.logPath != "" {
		logger.Info("logging", "Logger initialized", map[string]interface{}{
			"logFile": logger.logPath,
			"level":   string(cfg.Level),
		})
	}

	return logger, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// GetLogPath returns the current log file path
func (l *Logger) GetLogPath() string {
	return l.logPath
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	l.Info("logging", "Logger shutting down", nil)
	return l.file.Close()
}

func (l *Logger) event(e *zerolog.Event, component, msg string, data map[string]interface{}) {
	e = e.Str("component", component)
	for k, v := range data {
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}

// Debug logs a debug message
func (l *Logger) Debug(component, msg string, data map[string]interface{}) {
	l.event(l.zlog.Debug(), component, msg, data)
}

// Info logs an info message
func (l *Logger) Info(component, msg string, data map[string]interface{}) {
	l.event(l.zlog.Info(), component, msg, data)
}

// Warn logs a warning message
func (l *Logger) Warn(component, msg string, data map[string]interface{}) {
	l.event(l.zlog.Warn(), component, msg, data)
}

// Error logs an error message
func (l *Logger) Error(component, msg string, err error, data map[string]interface{}) {
	l.event(l.zlog.Error().Err(err), component, msg, data)
}

// Component returns a zerolog.Logger with the component field set
func (l *Logger) Component(name string) zerolog.Logger {
	return l.zlog.With().Str("component", name).Logger()
}

// Zerolog returns the underlying zerolog.Logger
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zlog
}
