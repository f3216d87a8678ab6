package runtime

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestPassthroughSink(t *testing.T) {
	var seen []Chunk
	sink := NewPassthroughSink(func(c Chunk) error {
		seen = append(seen, c)
		return nil
	})
	if err := sink.Write(Chunk{Stream: TagStderr, Data: []byte("oops")}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(seen) != 1 || seen[0].Stream != TagStderr {
		t.Fatalf("callback saw %v", seen)
	}
}

func TestFileSinkTruncateAndAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	s, err := NewFileSink(path, false)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	_ = s.Write(Chunk{Stream: TagStdout, Data: []byte("first\n")})
	_ = s.Close()

	s, err = NewFileSink(path, true)
	if err != nil {
		t.Fatalf("NewFileSink append: %v", err)
	}
	_ = s.Write(Chunk{Stream: TagStdout, Data: []byte("second\n")})
	_ = s.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "first\nsecond\n" {
		t.Fatalf("file = %q", data)
	}
}

func TestStreamSinkAccumulates(t *testing.T) {
	var buf bytes.Buffer
	s := NewStreamSink(&buf)
	payload := []byte("hello")
	if err := s.Write(Chunk{Stream: TagStdout, Data: payload}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// The sink copies; mutating the producer's buffer must not leak in.
	payload[0] = 'X'
	acc := s.Accumulated()
	if len(acc) != 1 || string(acc[0].Data) != "hello" {
		t.Fatalf("accumulated %v", acc)
	}
	if buf.String() != "hello" {
		t.Fatalf("consumer got %q", buf.String())
	}
}
