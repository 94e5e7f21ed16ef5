package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	LevelDebug LogLevel = 0
	LevelInfo  LogLevel = 1
	LevelWarn  LogLevel = 2
	LevelError LogLevel = 3
	LevelNone  LogLevel = 99
)

var levels = map[string]LogLevel{
	"DEBUG": LevelDebug,
	"INFO":  LevelInfo,
	"WARN":  LevelWarn,
	"ERROR": LevelError,
	"NONE":  LevelNone,
}

func Levelify(levelString string) (LogLevel, error) {
	upperLevelString := strings.ToUpper(levelString)
	level, ok := levels[upperLevelString]
	if !ok {
		expectedLevelKeys := make([]string, 0, len(levels))
		for k := range levels {
			expectedLevelKeys = append(expectedLevelKeys, k)
		}
		return level, fmt.Errorf("Unknown LogLevel string '%s', expected one of [%s]",
			levelString, strings.Join(expectedLevelKeys, ", "))
	}
	return level, nil
}

func (l LogLevel) String() string {
	for name, level := range levels {
		if level == l {
			return name
		}
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

type Logger interface {
	Debug(tag, msg string, args ...interface{})
	DebugWithDetails(tag, msg string, args ...interface{})
	Info(tag, msg string, args ...interface{})
	Warn(tag, msg string, args ...interface{})
	Error(tag, msg string, args ...interface{})
	ErrorWithDetails(tag, msg string, args ...interface{})
	HandlePanic(tag string)
	ToggleForcedDebug()
	Flush() error
	FlushTimeout(time.Duration) error
}

type logger struct {
	level       LogLevel
	logger      *log.Logger
	loggerMu    sync.Mutex
	forcedDebug bool
}

func NewLogger(level LogLevel) Logger {
	return NewWriterLogger(level, os.Stderr)
}

func NewWriterLogger(level LogLevel, writer io.Writer) Logger {
	return &logger{
		level:  level,
		logger: log.New(writer, "", log.LstdFlags),
	}
}

func (l *logger) Debug(tag, msg string, args ...interface{}) {
	if l.level > LevelDebug && !l.forcedDebug {
		return
	}

	l.printf(tag, "DEBUG - "+msg, args...)
}

// DebugWithDetails expects the last arg to be the details block.
func (l *logger) DebugWithDetails(tag, msg string, args ...interface{}) {
	msg = msg + "\n********************\n%s\n********************"
	l.Debug(tag, msg, args...)
}

func (l *logger) Info(tag, msg string, args ...interface{}) {
	if l.level > LevelInfo && !l.forcedDebug {
		return
	}

	l.printf(tag, "INFO - "+msg, args...)
}

func (l *logger) Warn(tag, msg string, args ...interface{}) {
	if l.level > LevelWarn && !l.forcedDebug {
		return
	}

	l.printf(tag, "WARN - "+msg, args...)
}

func (l *logger) Error(tag, msg string, args ...interface{}) {
	if l.level > LevelError && !l.forcedDebug {
		return
	}

	l.printf(tag, "ERROR - "+msg, args...)
}

// ErrorWithDetails expects the last arg to be the details block.
func (l *logger) ErrorWithDetails(tag, msg string, args ...interface{}) {
	msg = msg + "\n********************\n%s\n********************"
	l.Error(tag, msg, args...)
}

func (l *logger) HandlePanic(tag string) {
	if e := recover(); e != nil {
		l.logPanic(tag, e)
		os.Exit(2)
	}
}

func (l *logger) ToggleForcedDebug() {
	l.loggerMu.Lock()
	l.forcedDebug = !l.forcedDebug
	l.loggerMu.Unlock()
}

func (l *logger) Flush() error { return nil }

func (l *logger) FlushTimeout(_ time.Duration) error { return nil }

func (l *logger) logPanic(tag string, e interface{}) {
	var msg string
	switch obj := e.(type) {
	case string:
		msg = obj
	case fmt.Stringer:
		msg = obj.String()
	case error:
		msg = obj.Error()
	default:
		msg = fmt.Sprintf("%#v", obj)
	}

	l.ErrorWithDetails(tag, "Panic: %s", msg, debug.Stack())
}

func (l *logger) printf(tag, msg string, args ...interface{}) {
	l.loggerMu.Lock()
	defer l.loggerMu.Unlock()

	l.logger.SetPrefix("[" + tag + "] ")
	l.logger.Printf(msg, args...)
}
