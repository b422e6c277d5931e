// Package diag is the engine's logging sink: a togglable debug trace plus
// an always-on warning/diagnostic channel that parser diagnostics and
// store failures route through.
package diag

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu    sync.Mutex
	trace io.Writer
	warn  io.Writer = os.Stderr
	quiet bool
)

// SetTraceOutput sets the writer debug-trace lines go to. Pass nil to
// disable the trace entirely (the default).
func SetTraceOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	trace = w
}

// SetWarningOutput sets the writer warnings and diagnostics go to.
func SetWarningOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	warn = w
}

// SetQuiet suppresses all output, trace and warnings alike. Used by the
// CLI's serve subcommand (cmd/cxref), which runs the MCP daemon over stdio.
func SetQuiet(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = enabled
}

func traceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	if quiet {
		return false
	}
	if trace != nil {
		return true
	}
	return os.Getenv("CXREF_DEBUG") == "1"
}

func traceWriter() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	if quiet {
		return nil
	}
	if trace != nil {
		return trace
	}
	return os.Stderr
}

func warnWriter() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	if quiet {
		return nil
	}
	return warn
}

// Trace logs a component-tagged debug line, only when the trace is
// enabled (CXREF_DEBUG=1 or SetTraceOutput was called with a non-nil
// writer).
func Trace(component, format string, args ...any) {
	if !traceEnabled() {
		return
	}
	w := traceWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[%s] "+format+"\n", append([]any{component}, args...)...)
}

// Warn logs a warning unconditionally. Used for parser diagnostics and
// recoverable store failures.
func Warn(component, format string, args ...any) {
	w := warnWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[%s] warning: "+format+"\n", append([]any{component}, args...)...)
}
