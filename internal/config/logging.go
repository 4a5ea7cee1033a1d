package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogLevel represents logging verbosity levels.
type LogLevel int

// Log level constants.
const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelDebug
)

// ParseLogLevel parses a log level string.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LogLevelOff
	case "error":
		return LogLevelError
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelError
	}
}

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelOff:
		return "off"
	case LogLevelError:
		return "error"
	case LogLevelDebug:
		return "debug"
	default:
		return "error"
	}
}

func (l LogLevel) logrusLevel() logrus.Level {
	if l == LogLevelDebug {
		return logrus.DebugLevel
	}
	return logrus.ErrorLevel
}

// Logger writes leveled log lines to a file through logrus.
type Logger struct {
	mu       sync.Mutex
	level    LogLevel
	entry    *logrus.Entry
	file     *os.File
	filePath string
}

// NewLogger creates a logger writing text lines to filePath.
func NewLogger(level LogLevel, filePath string) (*Logger, error) {
	return NewLoggerWithFormat(level, filePath, "text")
}

// NewLoggerWithFormat creates a logger writing "text" or "json" lines to filePath.
func NewLoggerWithFormat(level LogLevel, filePath, format string) (*Logger, error) {
	logger := &Logger{
		level:    level,
		filePath: filePath,
	}

	if level == LogLevelOff || filePath == "" {
		return logger, nil
	}

	if strings.HasPrefix(filePath, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		filePath = filepath.Join(home, filePath[2:])
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}

	// #nosec G304 -- log file path is from validated config
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	logger.file = f
	logger.filePath = filePath
	logger.entry = logrus.NewEntry(newLogrus(f, level, format))

	return logger, nil
}

// NewWriterLogger creates a logger on an arbitrary writer, mainly for tests and stderr.
func NewWriterLogger(level LogLevel, w io.Writer, format string) *Logger {
	logger := &Logger{level: level}
	if level != LogLevelOff && w != nil {
		logger.entry = logrus.NewEntry(newLogrus(w, level, format))
	}
	return logger
}

func newLogrus(w io.Writer, level LogLevel, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level.logrusLevel())
	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}
	return l
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		l.entry = nil
		return err
	}
	return nil
}

// SetLevel changes the log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	if l.entry != nil {
		l.entry.Logger.SetLevel(level.logrusLevel())
	}
}

// Level returns the current log level.
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LogLevelDebug, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LogLevelError, format, args...)
}

// WithField returns a logger that attaches key=value to every line.
func (l *Logger) WithField(key string, value any) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	child := &Logger{level: l.level, filePath: l.filePath}
	if l.entry != nil {
		child.entry = l.entry.WithField(key, value)
	}
	return child
}

// Writer returns an io.Writer that writes to the logger at the specified level.
func (l *Logger) Writer(level LogLevel) io.Writer {
	return &logWriter{logger: l, level: level}
}

func (l *Logger) log(level LogLevel, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.level == LogLevelOff || level > l.level || l.entry == nil {
		return
	}

	if level == LogLevelDebug {
		l.entry.Debugf(format, args...)
		return
	}
	l.entry.Errorf(format, args...)
}

// logWriter implements io.Writer for the logger.
type logWriter struct {
	logger *Logger
	level  LogLevel
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.logger.log(w.level, "%s", strings.TrimSpace(string(p)))
	return len(p), nil
}

// NullLogger returns a logger that discards all output.
func NullLogger() *Logger {
	return &Logger{level: LogLevelOff}
}
