package process

import (
	"sort"
	"sync"
	"time"
)

// Registry is a job table keyed by monotonically increasing job number.
// Each session owns one; a single package-level registry holds orphans.
type Registry struct {
	mu   sync.Mutex
	next int
	jobs map[int]*Job
}

// NewRegistry returns an empty job table starting at job number 1.
func NewRegistry() *Registry {
	return &Registry{next: 1, jobs: make(map[int]*Job)}
}

// Add registers the job under the next job number and returns it.
func (r *Registry) Add(j *Job) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.next
	r.next++
	j.setNumber(n)
	r.jobs[n] = j
	return n
}

// insert re-registers a job that already carries a number, keeping the
// handle stable across an ownership transfer.
func (r *Registry) insert(j *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := j.Number()
	if n == 0 || r.jobs[n] != nil {
		n = r.next
		r.next++
		j.setNumber(n)
	} else if n >= r.next {
		r.next = n + 1
	}
	r.jobs[n] = j
}

// Get looks a job up by number.
func (r *Registry) Get(number int) (*Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[number]
	return j, ok
}

// Remove drops the job from the table; the handle stays valid.
func (r *Registry) Remove(number int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, number)
}

// Jobs returns every registered job in job-number order.
func (r *Registry) Jobs() []*Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	numbers := make([]int, 0, len(r.jobs))
	for n := range r.jobs {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	out := make([]*Job, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, r.jobs[n])
	}
	return out
}

// KillAll kills every job still in the table; session teardown uses it
// so non-orphaned work never outlives its owner.
func (r *Registry) KillAll() {
	for _, j := range r.Jobs() {
		if j.Status() != StatusDone {
			_ = j.Signal(SigKill)
		}
	}
}

// orphans holds adopted jobs. It belongs to no session: nothing tears it
// down and nothing is notified when its jobs complete.
var orphans = NewRegistry()

// Orphans exposes the session-independent registry of adopted jobs.
func Orphans() *Registry { return orphans }

// Adopt detaches a job from its owning registry and moves it under the
// orphan registry via a synchronous handshake with the job's worker. The
// handshake is bounded by timeout; expiry or a job that completes
// mid-handshake is a reported failure, never a silent success. On
// success the job appears in exactly one registry at every instant.
func Adopt(j *Job, from *Registry, timeout time.Duration) error {
	req := detachRequest{
		reply: make(chan error, 1),
		swap: func() error {
			if j.Status() == StatusDone {
				return &Error{Kind: ErrDetachRaced, Job: j.Number(), Message: "job exited during detach"}
			}
			from.Remove(j.Number())
			orphans.insert(j)
			return nil
		},
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case j.detach <- req:
	case <-j.done:
		return &Error{Kind: ErrDetachRaced, Job: j.Number(), Message: "job exited during detach"}
	case <-timer.C:
		return &Error{Kind: ErrDetachTimeout, Job: j.Number(), Message: "detach handshake timed out"}
	}
	select {
	case err := <-req.reply:
		return err
	case <-timer.C:
		return &Error{Kind: ErrDetachTimeout, Job: j.Number(), Message: "detach handshake timed out"}
	}
}
