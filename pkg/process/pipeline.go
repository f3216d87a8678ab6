package process

import (
	"context"
)

// RunPipeline launches every stage concurrently, chaining each stage's
// stdout into the next stage's stdin through a named pipe, and waits for
// all of them. The first spec's Stdin and the last spec's Stdout are
// used as given; interior stdio is overwritten with pipe ends.
//
// The combined exit code is the last stage's, unless pipefail is set, in
// which case it is the first nonzero code by pipeline position.
func RunPipeline(ctx context.Context, specs []SpawnSpec, pipefail bool) (int, error) {
	if len(specs) == 0 {
		return 0, nil
	}
	pipes := make([]*Pipe, len(specs)-1)
	closeAll := func() {
		for _, p := range pipes {
			if p != nil {
				p.Close()
			}
		}
	}
	for i := range pipes {
		p, err := NewPipe()
		if err != nil {
			closeAll()
			return 0, err
		}
		pipes[i] = p
	}

	jobs := make([]*Job, len(specs))
	for i := range specs {
		spec := specs[i]
		if i > 0 {
			spec.Stdin = pipes[i-1].ReadEnd()
		}
		if i < len(specs)-1 {
			spec.Stdout = pipes[i].WriteEnd()
		}
		j, err := Spawn(spec)
		if err != nil {
			for _, started := range jobs[:i] {
				_ = started.Signal(SigKill)
			}
			closeAll()
			return 0, err
		}
		jobs[i] = j
	}

	// All stages hold their own pipe descriptors now; release ours so
	// EOF travels down the chain as stages finish.
	for _, p := range pipes {
		p.CloseEnds()
	}
	defer closeAll()

	codes := make([]int, len(jobs))
	for i, j := range jobs {
		code, err := j.Wait(ctx)
		if err != nil {
			for _, rest := range jobs[i:] {
				if rest.Status() != StatusDone {
					_ = rest.Signal(SigKill)
				}
			}
			return 0, err
		}
		codes[i] = code
	}

	if pipefail {
		for _, code := range codes {
			if code != 0 {
				return code, nil
			}
		}
		return 0, nil
	}
	return codes[len(codes)-1], nil
}
