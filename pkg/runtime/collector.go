package runtime

import (
	"context"
	"errors"
	"fmt"
)

// ErrCollectorClosed is returned by Write and the query methods after
// the collector's owning session has gone away.
var ErrCollectorClosed = errors.New("output collector closed")

type collectorOp int

const (
	opChunks collectorOp = iota
	opFlush
)

type collectorReq struct {
	op    collectorOp
	reply chan []Chunk
}

// Collector is the default sink: an ordered in-memory sequence of tagged
// chunks. It runs as its own goroutine with an inbox channel, so
// concurrent pipeline stages never race on the chunk list — each write
// is an independent, order-preserving enqueue. The collector is linked
// to its owning session through the context passed at construction:
// cancelling it tears the collector down.
type Collector struct {
	writes chan Chunk
	reqs   chan collectorReq
	done   chan struct{}
	cancel context.CancelFunc
}

// NewCollector starts the collector goroutine. It stops when ctx is
// cancelled or Close is called.
func NewCollector(ctx context.Context) *Collector {
	ctx, cancel := context.WithCancel(ctx)
	c := &Collector{
		writes: make(chan Chunk, 64),
		reqs:   make(chan collectorReq),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go c.run(ctx)
	return c
}

// Close terminates the collector goroutine. Pending queries fail with
// ErrCollectorClosed.
func (c *Collector) Close() {
	c.cancel()
	<-c.done
}

func (c *Collector) run(ctx context.Context) {
	defer close(c.done)
	var chunks []Chunk
	for {
		select {
		case <-ctx.Done():
			return
		case chunk := <-c.writes:
			chunks = append(chunks, chunk)
		case req := <-c.reqs:
			// Drain buffered writes first so a query observes every
			// chunk whose Write call returned before the query began.
			chunks = drain(c.writes, chunks)
			snapshot := make([]Chunk, len(chunks))
			copy(snapshot, chunks)
			if req.op == opFlush {
				chunks = chunks[:0]
			}
			req.reply <- snapshot
		}
	}
}

func drain(writes <-chan Chunk, chunks []Chunk) []Chunk {
	for {
		select {
		case chunk := <-writes:
			chunks = append(chunks, chunk)
		default:
			return chunks
		}
	}
}

// Write enqueues one chunk; the data is copied before handoff. Chunk
// order across both streams is the literal order writes arrive here.
func (c *Collector) Write(chunk Chunk) error {
	select {
	case <-c.done:
		return ErrCollectorClosed
	default:
	}
	owned := Chunk{Stream: chunk.Stream, Data: append([]byte(nil), chunk.Data...)}
	select {
	case c.writes <- owned:
		return nil
	case <-c.done:
		return ErrCollectorClosed
	}
}

func (c *Collector) query(op collectorOp) ([]Chunk, error) {
	req := collectorReq{op: op, reply: make(chan []Chunk, 1)}
	select {
	case c.reqs <- req:
		return <-req.reply, nil
	case <-c.done:
		return nil, ErrCollectorClosed
	}
}

// Chunks returns an ordered snapshot of everything written so far,
// stdout and stderr interleaved exactly as they arrived.
func (c *Collector) Chunks() ([]Chunk, error) {
	return c.query(opChunks)
}

// Stdout returns the concatenated stdout bytes.
func (c *Collector) Stdout() ([]byte, error) {
	return c.filtered(TagStdout)
}

// Stderr returns the concatenated stderr bytes.
func (c *Collector) Stderr() ([]byte, error) {
	return c.filtered(TagStderr)
}

func (c *Collector) filtered(tag Tag) ([]byte, error) {
	chunks, err := c.Chunks()
	if err != nil {
		return nil, err
	}
	var out []byte
	for _, chunk := range chunks {
		if chunk.Stream == tag {
			out = append(out, chunk.Data...)
		}
	}
	return out, nil
}

// Output returns both streams split apart. Relative ordering across the
// split is not preserved; use Chunks for byte-accurate replay.
func (c *Collector) Output() (stdout, stderr []byte, err error) {
	chunks, err := c.Chunks()
	if err != nil {
		return nil, nil, err
	}
	for _, chunk := range chunks {
		if chunk.Stream == TagStdout {
			stdout = append(stdout, chunk.Data...)
		} else {
			stderr = append(stderr, chunk.Data...)
		}
	}
	return stdout, stderr, nil
}

// Flush returns the ordered chunks and clears the collector.
func (c *Collector) Flush() ([]Chunk, error) {
	return c.query(opFlush)
}

// FlushSplit returns both streams split apart and clears the collector.
func (c *Collector) FlushSplit() (stdout, stderr []byte, err error) {
	chunks, err := c.Flush()
	if err != nil {
		return nil, nil, err
	}
	for _, chunk := range chunks {
		if chunk.Stream == TagStdout {
			stdout = append(stdout, chunk.Data...)
		} else {
			stderr = append(stderr, chunk.Data...)
		}
	}
	return stdout, stderr, nil
}

// Done exposes the collector's termination for callers that link their
// own lifecycle to it.
func (c *Collector) Done() <-chan struct{} { return c.done }

// String summarises the collector for diagnostics.
func (c *Collector) String() string {
	select {
	case <-c.done:
		return "collector(closed)"
	default:
		return fmt.Sprintf("collector(%p)", c)
	}
}
