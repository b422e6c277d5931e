// Package engine implements the engine facade: the public Index/Reindex
// entry points, and the serialized completion pipeline that ties the
// registry's completion signal to the synchronizer and to indexingDone
// notifications.
package engine

import (
	"github.com/standardbeagle/cxref/internal/accum"
	"github.com/standardbeagle/cxref/internal/diag"
	"github.com/standardbeagle/cxref/internal/job"
	"github.com/standardbeagle/cxref/internal/kvstore"
	"github.com/standardbeagle/cxref/internal/registry"
	"github.com/standardbeagle/cxref/internal/resource"
	"github.com/standardbeagle/cxref/internal/syncer"
	"github.com/standardbeagle/cxref/internal/unit"
)

// completion is one finished job, queued for the serialized handler.
type completion struct {
	id         int
	input      string
	shouldSync bool
}

// Engine wires the accumulators, dispatcher, and synchronizer together.
// Completions are drained by a single goroutine (Start) so that sync runs
// and indexingDone notifications are strictly serialized with respect to
// one another, without holding the registry's own mutex across the
// sync's store I/O.
type Engine struct {
	Shared     *job.Shared
	Dispatcher *registry.Dispatcher
	syncer     *syncer.Synchronizer
	stores     []syncer.Store
	notify     func(id int)

	queue chan completion
	done  chan struct{}
}

// New builds an Engine. notify is called exactly once per completed job,
// after any sync that completion triggered: the notification always
// fires, whether or not a sync ran.
func New(cache unit.Cache, resources resource.Store, opener kvstore.Opener, poolSize int64, notify func(id int)) *Engine {
	shared := &job.Shared{
		Include: accum.New(),
		Defs:    accum.New(),
		Refs:    accum.New(),
		Syms:    accum.New(),
	}

	e := &Engine{
		Shared: shared,
		syncer: syncer.New(opener),
		stores: []syncer.Store{
			{Kind: kvstore.KindInclude, Acc: shared.Include},
			{Kind: kvstore.KindDefinition, Acc: shared.Defs},
			{Kind: kvstore.KindReference, Acc: shared.Refs},
			{Kind: kvstore.KindSymbol, Acc: shared.Syms},
		},
		notify: notify,
		queue:  make(chan completion, 64),
		done:   make(chan struct{}),
	}

	pool := registry.NewPool(poolSize)
	e.Dispatcher = registry.NewDispatcher(pool, cache, shared, resources, e.enqueue)
	return e
}

// enqueue is the Dispatcher's onDone callback: it only hands the event to
// the serialized queue, never blocks a worker on sync I/O itself.
func (e *Engine) enqueue(id int, input string, shouldSync bool) {
	e.queue <- completion{id: id, input: input, shouldSync: shouldSync}
}

// Start launches the single completion-handling goroutine. Call Stop to
// shut it down.
func (e *Engine) Start() {
	go e.run()
}

// Stop closes the completion queue, then waits for the handler goroutine
// to process the completions already queued and exit.
func (e *Engine) Stop() {
	close(e.queue)
	<-e.done
}

func (e *Engine) run() {
	defer close(e.done)
	for c := range e.queue {
		if c.shouldSync {
			e.syncer.Sync(e.stores)
		}
		diag.Trace("engine", "job %d (%s) done", c.id, c.input)
		if e.notify != nil {
			e.notify(c.id)
		}
	}
}

// Index submits input for indexing.
func (e *Engine) Index(input string, args []string, mode job.Mode) (int, error) {
	return e.Dispatcher.Index(input, args, mode)
}

// Reindex submits filename for reindexing using its stored resource
// record.
func (e *Engine) Reindex(filename string, mode job.Mode) (int, error) {
	return e.Dispatcher.Reindex(filename, mode)
}

// Flush runs an out-of-band synchronizer pass over whatever has
// accumulated so far, independent of the completion-count threshold
// (used by the CLI's watch subcommand on shutdown).
func (e *Engine) Flush() {
	e.syncer.Sync(e.stores)
}
