// Package logger routes the library's log output to a caller supplied
// function. Nothing is logged until SetLogger is called.
package logger

import (
	"sync"

	"github.com/tsawler/pdfreveal/tracer"
)

// LogLevel represents log severity
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	ErrorLevel LogLevel = "error"
)

// LogFunc is a single logger function that handles all levels
type LogFunc func(level LogLevel, msg string, keyvals ...interface{})

func discard(LogLevel, string, ...interface{}) {}

var (
	mu      sync.RWMutex
	logFunc LogFunc = discard
)

// SetLogger sets the global logger function. A nil f restores the default,
// which discards everything.
func SetLogger(f LogFunc) {
	mu.Lock()
	defer mu.Unlock()
	if f == nil {
		f = discard
	}
	logFunc = f
}

func current() LogFunc {
	mu.RLock()
	defer mu.RUnlock()
	return logFunc
}

// Debug logs a message at debug level
// If the last keyvals element is a bool and true, it is treated as trace flag
func Debug(msg string, keyvals ...interface{}) {
	trace := false
	if len(keyvals) > 0 {
		if b, ok := keyvals[len(keyvals)-1].(bool); ok {
			trace = b
			keyvals = keyvals[:len(keyvals)-1]
		}
	}
	current()(DebugLevel, msg, keyvals...)

	if trace {
		tracer.Log(msg)
	}
}

// Error logs a message at error level
func Error(msg string, keyvals ...interface{}) {
	current()(ErrorLevel, msg, keyvals...)
}
