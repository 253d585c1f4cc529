// Package tracer collects a trace of notable processing steps that can be
// printed once a run is over.
package tracer

import (
	"fmt"
	"io"
	"sync"
)

var (
	mu            sync.Mutex
	traceMessages []string
)

// Log just adds a message to the trace log.
func Log(msg string) {
	mu.Lock()
	traceMessages = append(traceMessages, msg)
	mu.Unlock()
}

// Messages returns a copy of the accumulated trace log.
func Messages() []string {
	mu.Lock()
	defer mu.Unlock()
	return append([]string(nil), traceMessages...)
}

// Flush writes the accumulated trace log to w, one message per line, and
// resets it.
func Flush(w io.Writer) error {
	mu.Lock()
	msgs := traceMessages
	// reset so the next run starts fresh
	traceMessages = nil
	mu.Unlock()

	for _, msg := range msgs {
		if _, err := fmt.Fprintln(w, msg); err != nil {
			return err
		}
	}
	return nil
}

// Reset discards the trace log.
func Reset() {
	mu.Lock()
	traceMessages = nil
	mu.Unlock()
}
