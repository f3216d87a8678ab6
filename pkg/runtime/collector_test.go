package runtime

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestCollectorOrdering(t *testing.T) {
	c := NewCollector(context.Background())
	defer c.Close()

	writes := []Chunk{
		{Stream: TagStdout, Data: []byte("one ")},
		{Stream: TagStderr, Data: []byte("warn ")},
		{Stream: TagStdout, Data: []byte("two")},
	}
	for _, w := range writes {
		if err := c.Write(w); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	chunks, err := c.Chunks()
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	for i, w := range writes {
		if chunks[i].Stream != w.Stream || !bytes.Equal(chunks[i].Data, w.Data) {
			t.Fatalf("chunk %d = %v, want %v", i, chunks[i], w)
		}
	}

	stdout, err := c.Stdout()
	if err != nil || string(stdout) != "one two" {
		t.Fatalf("Stdout = %q, %v", stdout, err)
	}
	stderr, err := c.Stderr()
	if err != nil || string(stderr) != "warn " {
		t.Fatalf("Stderr = %q, %v", stderr, err)
	}
}

func TestCollectorConcurrentWriters(t *testing.T) {
	c := NewCollector(context.Background())
	defer c.Close()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = c.Write(Chunk{Stream: TagStdout, Data: []byte(fmt.Sprintf("w%d:%d\n", id, i))})
			}
		}(w)
	}
	wg.Wait()

	chunks, err := c.Chunks()
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if len(chunks) != 200 {
		t.Fatalf("got %d chunks, want 200", len(chunks))
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(context.Background())
	defer c.Close()

	_ = c.Write(Chunk{Stream: TagStdout, Data: []byte("first")})
	flushed, err := c.Flush()
	if err != nil || len(flushed) != 1 {
		t.Fatalf("Flush = %v, %v", flushed, err)
	}
	chunks, err := c.Chunks()
	if err != nil || len(chunks) != 0 {
		t.Fatalf("after flush: %v, %v", chunks, err)
	}
}

func TestCollectorCloseFailsWrites(t *testing.T) {
	c := NewCollector(context.Background())
	c.Close()
	if err := c.Write(Chunk{Stream: TagStdout, Data: []byte("late")}); err != ErrCollectorClosed {
		t.Fatalf("want ErrCollectorClosed, got %v", err)
	}
	if _, err := c.Chunks(); err != ErrCollectorClosed {
		t.Fatalf("query after close: %v", err)
	}
}

func TestCollectorContextTeardown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewCollector(ctx)
	cancel()
	<-c.Done()
	if err := c.Write(Chunk{Stream: TagStdout, Data: []byte("x")}); err != ErrCollectorClosed {
		t.Fatalf("want ErrCollectorClosed after cancel, got %v", err)
	}
}
