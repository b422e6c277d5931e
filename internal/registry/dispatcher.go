package registry

import (
	"github.com/standardbeagle/cxref/internal/job"
	"github.com/standardbeagle/cxref/internal/resource"
	"github.com/standardbeagle/cxref/internal/unit"
	"github.com/standardbeagle/cxref/internal/xerrors"
)

// Dispatcher combines a Registry, a worker Pool, and job construction
// into the engine's index/reindex entry points. The Registry alone is
// just mutex-guarded bookkeeping; Dispatcher is the component that
// actually builds and schedules job.Job values.
//
// onDone is called from the pool goroutine exactly once per job, after
// Registry.Complete has already run. The caller (normally the engine
// facade) is responsible for serializing completions and deciding what
// to do with the shouldSync signal Registry.Complete reports.
type Dispatcher struct {
	Registry  *Registry
	pool      *Pool
	cache     unit.Cache
	shared    *job.Shared
	resources resource.Store
	onDone    func(id int, input string, shouldSync bool)
}

// NewDispatcher wires a Dispatcher. onDone is invoked once per completed
// job, after the registry's own bookkeeping has already run.
func NewDispatcher(pool *Pool, cache unit.Cache, shared *job.Shared, resources resource.Store, onDone func(id int, input string, shouldSync bool)) *Dispatcher {
	return &Dispatcher{
		Registry:  New(),
		pool:      pool,
		cache:     cache,
		shared:    shared,
		resources: resources,
		onDone:    onDone,
	}
}

// Index reserves a job id for input, builds the job, and hands it to
// the worker pool. It returns RejectedError, never a store or parse
// error: those never escape a job.
func (d *Dispatcher) Index(input string, args []string, mode job.Mode) (int, error) {
	id, ok := d.Registry.Reserve(input)
	if !ok {
		return -1, &xerrors.RejectedError{Input: input, Reason: "already indexing"}
	}

	j := job.New(id, input, args, mode, d.cache, d.shared)
	d.pool.Go(func() {
		done := j.Run()
		shouldSync := d.Registry.Complete(done.ID, done.Input)
		d.onDone(done.ID, done.Input, shouldSync)
	})
	return id, nil
}

// Reindex looks up filename's resource record for its original input
// path and compile args, then delegates to Index. It rejects when no
// usable record exists.
func (d *Dispatcher) Reindex(filename string, mode job.Mode) (int, error) {
	if !d.resources.Exists(filename, resource.KindInformation) {
		return -1, &xerrors.RejectedError{Input: filename, Reason: "no resource record"}
	}

	data, err := d.resources.Read(filename, resource.KindInformation)
	if err != nil || len(data) == 0 || data[0] == "" {
		return -1, &xerrors.RejectedError{Input: filename, Reason: "no resource data"}
	}

	input := data[0]
	args := data[1:]
	return d.Index(input, args, mode)
}
