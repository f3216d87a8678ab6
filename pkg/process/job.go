package process

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Status is a job's lifecycle state. Done is terminal: no transition
// ever leaves it.
type Status int

const (
	StatusRunning Status = iota
	StatusStopped
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	case StatusDone:
		return "done"
	default:
		return fmt.Sprintf("unknown_status_%d", int(s))
	}
}

// SignalKind selects the control signal Signal delivers.
type SignalKind int

const (
	SigSuspend SignalKind = iota
	SigResume
	SigKill
)

// SpawnSpec describes one process launch.
type SpawnSpec struct {
	Argv   []string
	Env    []string
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Job tracks one spawned OS process. Two goroutines back it: a monitor
// that waits for process exit, and a worker that serves the detach
// handshake until the job completes.
type Job struct {
	mu          sync.Mutex
	number      int
	pid         int
	cmd         *exec.Cmd
	status      Status
	exitCode    int
	startedAt   time.Time
	completedAt time.Time

	done   chan struct{}
	detach chan detachRequest
}

type detachRequest struct {
	swap  func() error
	reply chan error
}

// Spawn launches the process described by spec and returns its job
// handle with status running.
func Spawn(spec SpawnSpec) (*Job, error) {
	if len(spec.Argv) == 0 {
		return nil, &Error{Kind: ErrSpawn, Message: "empty argv"}
	}
	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
	cmd.Env = spec.Env
	cmd.Dir = spec.Dir
	cmd.Stdin = spec.Stdin
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr
	if err := cmd.Start(); err != nil {
		return nil, &Error{Kind: ErrSpawn, Message: fmt.Sprintf("spawn %q", spec.Argv[0]), Err: err}
	}
	j := &Job{
		pid:       cmd.Process.Pid,
		cmd:       cmd,
		status:    StatusRunning,
		startedAt: time.Now(),
		done:      make(chan struct{}),
		detach:    make(chan detachRequest),
	}
	go j.monitor()
	go j.worker()
	return j, nil
}

// monitor blocks on process exit and records the terminal state.
func (j *Job) monitor() {
	err := j.cmd.Wait()
	j.finish(exitCodeFrom(err))
}

// worker serves detach handshakes until the job completes. A handshake
// arriving after completion is never acknowledged; the caller's bounded
// wait turns that into a reported failure.
func (j *Job) worker() {
	for {
		select {
		case req := <-j.detach:
			err := req.swap()
			req.reply <- err
			if err == nil {
				return
			}
		case <-j.done:
			return
		}
	}
}

func (j *Job) finish(code int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status == StatusDone {
		return
	}
	j.status = StatusDone
	j.exitCode = code
	j.completedAt = time.Now()
	close(j.done)
}

// exitCodeFrom maps a Wait error to a shell exit code: 128+signal for
// signal deaths, the raw code otherwise.
func exitCodeFrom(err error) int {
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exec.ExitError); ok {
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal())
		}
		return ee.ExitCode()
	}
	return 127
}

// Signal delivers suspend, resume, or kill to the job's process and
// applies the matching state transition. Signalling a done job fails.
func (j *Job) Signal(kind SignalKind) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status == StatusDone {
		return &Error{Kind: ErrNotRunning, Job: j.number, Message: "job already done"}
	}
	var (
		sig  unix.Signal
		next Status
	)
	switch kind {
	case SigSuspend:
		if j.status != StatusRunning {
			return &Error{Kind: ErrSignal, Job: j.number, Message: "suspend requires a running job"}
		}
		sig, next = unix.SIGSTOP, StatusStopped
	case SigResume:
		if j.status != StatusStopped {
			return &Error{Kind: ErrSignal, Job: j.number, Message: "resume requires a stopped job"}
		}
		sig, next = unix.SIGCONT, StatusRunning
	case SigKill:
		sig, next = unix.SIGKILL, j.status
	default:
		return &Error{Kind: ErrSignal, Job: j.number, Message: fmt.Sprintf("unknown signal kind %d", int(kind))}
	}
	if err := unix.Kill(j.pid, sig); err != nil {
		return &Error{Kind: ErrSignal, Job: j.number, Message: fmt.Sprintf("deliver %s", unix.SignalName(sig)), Err: err}
	}
	j.status = next
	return nil
}

// Wait blocks the calling goroutine (and nothing else) until the job is
// done, returning its exit code.
func (j *Job) Wait(ctx context.Context) (int, error) {
	select {
	case <-j.done:
		j.mu.Lock()
		defer j.mu.Unlock()
		return j.exitCode, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Done exposes completion for select-based callers.
func (j *Job) Done() <-chan struct{} { return j.done }

// Number is the session-scoped job number (zero until registered).
func (j *Job) Number() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.number
}

func (j *Job) setNumber(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.number = n
}

// Pid returns the OS process id.
func (j *Job) Pid() int { return j.pid }

// Status returns the current lifecycle state.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// ExitCode returns the recorded exit code; ok is false until the job is
// done.
func (j *Job) ExitCode() (code int, ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusDone {
		return 0, false
	}
	return j.exitCode, true
}

// StartedAt reports when the process was launched.
func (j *Job) StartedAt() time.Time { return j.startedAt }

// CompletedAt reports when the job finished (zero until done).
func (j *Job) CompletedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.completedAt
}
