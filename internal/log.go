package internal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	SUCCESS
)

var levelNames = map[LogLevel]string{
	DEBUG:   "DEBUG",
	INFO:    "INFO",
	WARNING: "WARNING",
	ERROR:   "ERROR",
	SUCCESS: "SUCCESS",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a config value such as "warn" or "DEBUG" to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG, nil
	case "", "info":
		return INFO, nil
	case "warn", "warning":
		return WARNING, nil
	case "error":
		return ERROR, nil
	case "success":
		return SUCCESS, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

type Logger struct {
	mu     *sync.Mutex
	level  LogLevel
	writer io.Writer
	prefix string
	now    func() time.Time
}

var (
	defaultLogger *Logger
	once          sync.Once
)

func NewLogger(out io.Writer, level LogLevel) *Logger {
	if out == nil {
		out = io.Discard
	}
	return &Logger{
		mu:     &sync.Mutex{},
		level:  level,
		writer: out,
		now:    time.Now,
	}
}

func InitDefaultLogger(level LogLevel) {
	once.Do(func() {
		defaultLogger = NewLogger(os.Stdout, level)
	})
}

func GetDefaultLogger() *Logger {
	InitDefaultLogger(INFO)
	return defaultLogger
}

// With returns a logger sharing the same writer (and lock) whose lines
// carry a "component:" prefix.
func (l *Logger) With(component string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	prefix := component
	if l.prefix != "" {
		prefix = l.prefix + "." + component
	}
	return &Logger{
		mu:     l.mu,
		level:  l.level,
		writer: l.writer,
		prefix: prefix,
		now:    l.now,
	}
}

func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) logInternal(level LogLevel, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	msg := strings.TrimRight(fmt.Sprintf(format, v...), "\n")
	if l.prefix != "" {
		msg = l.prefix + ": " + msg
	}
	timestamp := l.now().Format(time.DateTime)
	logEntry := fmt.Sprintf("%s [%s] %s\n", timestamp, level, msg)

	_, _ = io.WriteString(l.writer, logEntry)
}

func (l *Logger) Debug(format string, v ...any) {
	l.logInternal(DEBUG, format, v...)
}

func (l *Logger) Info(format string, v ...any) {
	l.logInternal(INFO, format, v...)
}

func (l *Logger) Warn(format string, v ...any) {
	l.logInternal(WARNING, format, v...)
}

func (l *Logger) Error(format string, v ...any) {
	l.logInternal(ERROR, format, v...)
}

func (l *Logger) Success(format string, v ...any) {
	l.logInternal(SUCCESS, format, v...)
}

func Debug(format string, v ...any) {
	GetDefaultLogger().Debug(format, v...)
}

func Info(format string, v ...any) {
	GetDefaultLogger().Info(format, v...)
}

func Warn(format string, v ...any) {
	GetDefaultLogger().Warn(format, v...)
}

func Error(format string, v ...any) {
	GetDefaultLogger().Error(format, v...)
}

func Success(format string, v ...any) {
	GetDefaultLogger().Success(format, v...)
}
