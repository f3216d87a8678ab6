package interpreter

import "bsh/engine-go/pkg/runtime"

// Result is what one Execute call produced: the final exit code and,
// when output flowed through a collector, a handle for reading it back
// in order.
type Result struct {
	exitCode  int
	collector *runtime.Collector
}

// ExitCode returns the exit code of the last statement executed.
func (r *Result) ExitCode() int { return r.exitCode }

// Success reports whether the execution ended with exit code zero.
func (r *Result) Success() bool { return r.exitCode == 0 }

// Stdout returns the captured stdout bytes as a string, empty when no
// collector was attached or it has already closed.
func (r *Result) Stdout() string {
	if r.collector == nil {
		return ""
	}
	out, err := r.collector.Stdout()
	if err != nil {
		return ""
	}
	return string(out)
}

// Stderr returns the captured stderr bytes as a string.
func (r *Result) Stderr() string {
	if r.collector == nil {
		return ""
	}
	out, err := r.collector.Stderr()
	if err != nil {
		return ""
	}
	return string(out)
}

// AllOutput returns both streams interleaved in arrival order.
func (r *Result) AllOutput() string {
	if r.collector == nil {
		return ""
	}
	chunks, err := r.collector.Chunks()
	if err != nil {
		return ""
	}
	var out []byte
	for _, chunk := range chunks {
		out = append(out, chunk.Data...)
	}
	return string(out)
}
