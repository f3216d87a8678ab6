package process

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
)

func TestPipeRoundTrip(t *testing.T) {
	p, err := NewPipe()
	if err != nil {
		t.Fatalf("NewPipe: %v", err)
	}
	defer p.Close()

	go func() {
		_, _ = p.WriteEnd().Write([]byte("through the fifo"))
		p.WriteEnd().Close()
	}()
	data, err := io.ReadAll(p.ReadEnd())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "through the fifo" {
		t.Fatalf("read %q", data)
	}
}

func TestPipelineOrdersOutput(t *testing.T) {
	var out bytes.Buffer
	code, err := RunPipeline(context.Background(), []SpawnSpec{
		{Argv: []string{"printf", `b\na\n`}, Env: os.Environ()},
		{Argv: []string{"sort"}, Env: os.Environ(), Stdout: &out},
	}, false)
	if err != nil {
		t.Fatalf("RunPipeline: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if out.String() != "a\nb\n" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestPipelineStdinFeedsFirstStage(t *testing.T) {
	var out bytes.Buffer
	code, err := RunPipeline(context.Background(), []SpawnSpec{
		{Argv: []string{"cat"}, Env: os.Environ(), Stdin: strings.NewReader("2\n1\n3\n")},
		{Argv: []string{"sort"}, Env: os.Environ(), Stdout: &out},
	}, false)
	if err != nil || code != 0 {
		t.Fatalf("RunPipeline = %d, %v", code, err)
	}
	if out.String() != "1\n2\n3\n" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestPipefailSelectsFirstNonzero(t *testing.T) {
	specs := func() []SpawnSpec {
		return []SpawnSpec{
			{Argv: []string{"false"}, Env: os.Environ()},
			{Argv: []string{"true"}, Env: os.Environ()},
		}
	}

	code, err := RunPipeline(context.Background(), specs(), false)
	if err != nil || code != 0 {
		t.Fatalf("without pipefail = %d, %v", code, err)
	}
	code, err = RunPipeline(context.Background(), specs(), true)
	if err != nil || code != 1 {
		t.Fatalf("with pipefail = %d, %v", code, err)
	}
}

func TestPipelineSpawnFailureKillsStarted(t *testing.T) {
	_, err := RunPipeline(context.Background(), []SpawnSpec{
		{Argv: []string{"sleep", "30"}, Env: os.Environ()},
		{Argv: []string{"/no/such/binary"}, Env: os.Environ()},
	}, false)
	if err == nil {
		t.Fatalf("spawn failure not reported")
	}
}
