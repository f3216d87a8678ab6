// Package process spawns OS processes, wires pipelines through named
// pipes, and tracks job lifecycle for the execution engine.
package process

import "fmt"

// ErrorKind discriminates process-management failures.
type ErrorKind int

const (
	ErrSpawn ErrorKind = iota
	ErrSignal
	ErrNotRunning
	ErrDetachTimeout
	ErrDetachRaced
	ErrPipe
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSpawn:
		return "spawn"
	case ErrSignal:
		return "signal"
	case ErrNotRunning:
		return "not_running"
	case ErrDetachTimeout:
		return "detach_timeout"
	case ErrDetachRaced:
		return "detach_raced"
	case ErrPipe:
		return "pipe"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Error reports a failed process operation. Job is zero when the failure
// precedes job creation.
type Error struct {
	Kind    ErrorKind
	Job     int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Job > 0 {
		return fmt.Sprintf("process: job %d: %s", e.Job, e.Message)
	}
	return fmt.Sprintf("process: %s", e.Message)
}

func (e *Error) Unwrap() error { return e.Err }
