package process

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Pipe is an OS-level named pipe whose read and write ends are opened
// independently. Pipeline stages are chained through these so the kernel
// provides the backpressure; nothing is buffered in process memory.
type Pipe struct {
	dir string
	r   *os.File
	w   *os.File
}

// NewPipe creates a FIFO in a private temporary directory and opens both
// ends. The read end is opened nonblocking first so the open does not
// wait for a writer, then switched back to blocking mode.
func NewPipe() (*Pipe, error) {
	dir, err := os.MkdirTemp("", "engine-pipe-")
	if err != nil {
		return nil, &Error{Kind: ErrPipe, Message: "create pipe dir", Err: err}
	}
	path := filepath.Join(dir, "fifo")
	if err := unix.Mkfifo(path, 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, &Error{Kind: ErrPipe, Message: "mkfifo", Err: err}
	}
	rfd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		os.RemoveAll(dir)
		return nil, &Error{Kind: ErrPipe, Message: "open read end", Err: err}
	}
	if _, err := unix.FcntlInt(uintptr(rfd), unix.F_SETFL, 0); err != nil {
		unix.Close(rfd)
		os.RemoveAll(dir)
		return nil, &Error{Kind: ErrPipe, Message: "clear O_NONBLOCK", Err: err}
	}
	w, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		unix.Close(rfd)
		os.RemoveAll(dir)
		return nil, &Error{Kind: ErrPipe, Message: "open write end", Err: err}
	}
	return &Pipe{
		dir: dir,
		r:   os.NewFile(uintptr(rfd), path),
		w:   w,
	}, nil
}

// ReadEnd returns the read side of the pipe.
func (p *Pipe) ReadEnd() *os.File { return p.r }

// WriteEnd returns the write side of the pipe.
func (p *Pipe) WriteEnd() *os.File { return p.w }

// CloseEnds closes this process's copies of both descriptors. Children
// that inherited the ends keep their own copies; closing ours is what
// lets EOF propagate through the pipeline.
func (p *Pipe) CloseEnds() {
	if p.r != nil {
		p.r.Close()
		p.r = nil
	}
	if p.w != nil {
		p.w.Close()
		p.w = nil
	}
}

// Close tears the pipe down entirely, including the backing FIFO.
func (p *Pipe) Close() error {
	p.CloseEnds()
	if p.dir == "" {
		return nil
	}
	dir := p.dir
	p.dir = ""
	if err := os.RemoveAll(dir); err != nil {
		return &Error{Kind: ErrPipe, Message: fmt.Sprintf("remove %s", dir), Err: err}
	}
	return nil
}
