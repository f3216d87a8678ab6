package runtime

import (
	"fmt"
	"io"
	"os"
)

// Tag labels which standard stream a chunk belongs to.
type Tag int

const (
	TagStdout Tag = iota
	TagStderr
)

func (t Tag) String() string {
	if t == TagStdout {
		return "stdout"
	}
	return "stderr"
}

// Chunk is one tagged write. Data is owned by the producer until the
// sink returns; sinks that retain bytes copy them.
type Chunk struct {
	Stream Tag
	Data   []byte
}

// Sink is the single output boundary of the engine: accept one tagged
// chunk, perform a side effect, report success or failure. A sink must
// not block beyond whatever its underlying medium blocks on.
type Sink interface {
	Write(chunk Chunk) error
}

// NullSink discards every chunk.
type NullSink struct{}

func (NullSink) Write(Chunk) error { return nil }

// PassthroughSink invokes a caller-supplied callback per chunk.
type PassthroughSink struct {
	fn func(Chunk) error
}

// NewPassthroughSink wraps fn as a sink.
func NewPassthroughSink(fn func(Chunk) error) *PassthroughSink {
	return &PassthroughSink{fn: fn}
}

func (p *PassthroughSink) Write(chunk Chunk) error {
	if p.fn == nil {
		return nil
	}
	return p.fn(chunk)
}

// FileSink writes chunk bytes straight to a file descriptor, ignoring
// the stream tag.
type FileSink struct {
	f *os.File
}

// NewFileSink opens path for writing, truncating unless appendMode is
// set.
func NewFileSink(path string, appendMode bool) (*FileSink, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open sink file: %w", err)
	}
	return &FileSink{f: f}, nil
}

func (s *FileSink) Write(chunk Chunk) error {
	_, err := s.f.Write(chunk.Data)
	return err
}

// Close releases the underlying descriptor.
func (s *FileSink) Close() error { return s.f.Close() }

// StreamSink adapts any push consumer and keeps its own explicit chunk
// accumulator; there is no ambient scratch state involved.
type StreamSink struct {
	consumer io.Writer
	acc      []Chunk
}

// NewStreamSink wraps a push consumer.
func NewStreamSink(consumer io.Writer) *StreamSink {
	return &StreamSink{consumer: consumer}
}

func (s *StreamSink) Write(chunk Chunk) error {
	data := append([]byte(nil), chunk.Data...)
	s.acc = append(s.acc, Chunk{Stream: chunk.Stream, Data: data})
	if s.consumer == nil {
		return nil
	}
	_, err := s.consumer.Write(data)
	return err
}

// Accumulated returns every chunk seen so far, in arrival order.
func (s *StreamSink) Accumulated() []Chunk {
	out := make([]Chunk, len(s.acc))
	copy(out, s.acc)
	return out
}
