// Package registry implements the job registry and dispatcher:
// at-most-one-job-per-input bookkeeping, monotonic job-id allocation, and
// a golang.org/x/sync/semaphore-backed bounded worker pool.
package registry

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// SyncInterval is the completed-job count that triggers a sync even while
// the registry is not yet empty.
const SyncInterval = 10

// Registry is the mutex-guarded bookkeeping: next job id, the set of
// in-flight job ids, the set of inputs currently indexing, and the count
// of completions since the last sync. It owns no I/O; Reserve and
// Complete never block.
type Registry struct {
	mu        sync.Mutex
	nextID    int
	jobs      map[int]struct{}
	indexing  map[string]struct{}
	completed int
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		jobs:     make(map[int]struct{}),
		indexing: make(map[string]struct{}),
	}
}

// Reserve attempts to claim input for a new job. ok is false if input is
// already indexing: at most one job per input, so the second caller is
// rejected outright, not queued. On success it allocates the smallest
// unused id at or above the running counter and marks both the id and
// the input as in-flight.
func (r *Registry) Reserve(input string) (id int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.indexing[input]; busy {
		return 0, false
	}

	id = r.nextID
	for {
		if _, used := r.jobs[id]; !used {
			break
		}
		id++
	}
	r.nextID = id + 1

	r.jobs[id] = struct{}{}
	r.indexing[input] = struct{}{}
	return id, true
}

// Complete removes id and input from the in-flight sets and reports
// whether this completion crosses the sync threshold: either the
// registry just drained to empty, or the completion counter reached
// SyncInterval. The counter resets whenever it reports true.
func (r *Registry) Complete(id int, input string) (shouldSync bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.jobs, id)
	delete(r.indexing, input)
	r.completed++

	if len(r.jobs) == 0 || r.completed >= SyncInterval {
		r.completed = 0
		return true
	}
	return false
}

// InFlight reports the number of jobs currently registered.
func (r *Registry) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// IsIndexing reports whether input currently has an in-flight job.
func (r *Registry) IsIndexing(input string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.indexing[input]
	return ok
}

// Pool runs work on a bounded number of concurrent goroutines, with a
// parallelism floor of 2. A semaphore rather than a fixed worker
// goroutine set, so Go returns unused capacity to other callers between
// bursts instead of parking idle workers.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool returns a Pool that runs at most parallelism tasks at once,
// raised to 2 if given less.
func NewPool(parallelism int64) *Pool {
	if parallelism < 2 {
		parallelism = 2
	}
	return &Pool{sem: semaphore.NewWeighted(parallelism)}
}

// Go schedules fn to run once a slot is free. fn always eventually runs;
// Go itself never blocks the caller.
func (p *Pool) Go(fn func()) {
	go func() {
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)
		fn()
	}()
}
