// Package interpreter executes pre-validated shell ASTs. It dispatches
// per node kind, threading session state, control signals, and exit
// codes through statement lists; external commands become jobs managed
// by pkg/process and all output flows through pkg/runtime sinks.
package interpreter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bsh/engine-go/pkg/ast"
	"bsh/engine-go/pkg/process"
	"bsh/engine-go/pkg/runtime"
)

// Option is one of the session-wide shell options.
type Option int

const (
	// OptErrExit promotes a nonzero exit in a sequential statement list
	// to an early halt of that list.
	OptErrExit Option = iota
	// OptPipeFail makes a pipeline's exit the first nonzero stage exit
	// by position instead of the last stage's.
	OptPipeFail
	// OptNoUnset makes expansion of an unset variable a failure.
	OptNoUnset
	// OptVerbose echoes each expanded command line to the stderr sink.
	OptVerbose
)

const defaultDetachTimeout = 2 * time.Second

// Session owns all state one script-execution context needs: the
// variable store, the job table, shell options, the function registry,
// and the default output collector. Sessions are created and destroyed
// explicitly by the embedder; Close tears down every non-orphaned job
// along with the collector.
type Session struct {
	mu            sync.Mutex
	vars          *runtime.Store
	funcs         map[string]*ast.FunctionDef
	jobs          *process.Registry
	collector     *runtime.Collector
	builtins      Registry
	options       map[Option]bool
	detachTimeout time.Duration
	lastExit      int
	cancel        context.CancelFunc
	closed        bool
}

// New creates a session with default options, an empty store, and a
// fresh collector linked to the session's lifetime.
func New() *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		vars:          runtime.NewStore(),
		funcs:         make(map[string]*ast.FunctionDef),
		jobs:          process.NewRegistry(),
		collector:     runtime.NewCollector(ctx),
		builtins:      DefaultRegistry(),
		options:       make(map[Option]bool),
		detachTimeout: defaultDetachTimeout,
		cancel:        cancel,
	}
}

// SetOption toggles a shell option.
func (s *Session) SetOption(opt Option, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[opt] = on
}

// OptionEnabled reports the current state of a shell option.
func (s *Session) OptionEnabled(opt Option) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options[opt]
}

// Vars exposes the session's variable store.
func (s *Session) Vars() *runtime.Store { return s.vars }

// Jobs exposes the session's job table.
func (s *Session) Jobs() *process.Registry { return s.jobs }

// Collector exposes the session's default output collector.
func (s *Session) Collector() *runtime.Collector { return s.collector }

// SetBuiltins replaces the builtin registry consulted before external
// spawn.
func (s *Session) SetBuiltins(r Registry) {
	if r == nil {
		r = MapRegistry{}
	}
	s.builtins = r
}

// SetDetachTimeout bounds the disown handshake.
func (s *Session) SetDetachTimeout(d time.Duration) {
	if d > 0 {
		s.detachTimeout = d
	}
}

// LastExit returns the exit code of the most recent statement.
func (s *Session) LastExit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastExit
}

func (s *Session) setLastExit(code int) {
	s.mu.Lock()
	s.lastExit = code
	s.mu.Unlock()
}

// Function returns the registered body for name, if any.
func (s *Session) Function(name string) (*ast.FunctionDef, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn, ok := s.funcs[name]
	return fn, ok
}

func (s *Session) defineFunction(fn *ast.FunctionDef) {
	s.mu.Lock()
	s.funcs[fn.Name] = fn
	s.mu.Unlock()
}

// Disown detaches the numbered background job from this session and
// hands it to the orphan registry; the job then survives session
// teardown. The handshake is bounded by the session's detach timeout.
func (s *Session) Disown(jobNumber int) error {
	j, ok := s.jobs.Get(jobNumber)
	if !ok {
		return &process.Error{Kind: process.ErrNotRunning, Job: jobNumber, Message: "no such job"}
	}
	return process.Adopt(j, s.jobs, s.detachTimeout)
}

// Close destroys the session: every job still in the table is killed
// and the collector goroutine stops. Adopted jobs are unaffected.
// Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	s.jobs.KillAll()
	s.cancel()
	return nil
}

func (s *Session) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("session is closed")
	}
	return nil
}
