package errors

import (
	"runtime"
)

const maxStackDepth = 32

// StackTrace is a list of program counters captured when the error was created.
type StackTrace []uintptr

type stackTracer interface {
	StackTrace() StackTrace
}

func callers() StackTrace {
	var pcs [maxStackDepth]uintptr
	n := runtime.Callers(3, pcs[:])

	// Return addresses point after the call instruction, step back,
	// so the file:line lookup hits the call itself.
	trace := make(StackTrace, n)
	for i, pc := range pcs[:n] {
		trace[i] = pc - 1
	}
	return trace
}
