// Package job implements the indexer job: one unit of work that acquires
// a parsed translation unit for one input file, runs the AST visitors
// into job-local accumulators, then merges job-local data into the shared
// accumulators.
package job

import (
	"github.com/standardbeagle/cxref/internal/accum"
	"github.com/standardbeagle/cxref/internal/diag"
	"github.com/standardbeagle/cxref/internal/unit"
	"github.com/standardbeagle/cxref/internal/visit"
)

// Mode selects whether the unit cache is allowed to serve a cached AST.
type Mode int

const (
	Normal Mode = iota
	Force
)

// Shared bundles the engine's four shared accumulators a job merges into.
type Shared struct {
	Include *accum.Accumulator // written directly during traversal
	Defs    *accum.Accumulator
	Refs    *accum.Accumulator
	Syms    *accum.Accumulator
}

// Done is the completion event a job emits exactly once, win or lose.
type Done struct {
	ID    int
	Input string
}

// Job is one indexing unit of work. It is exclusively owned by the worker
// running it until Run returns, and has nothing persistent to hand off
// after that: the merge into Shared already happened.
type Job struct {
	ID     int
	Input  string
	Args   []string
	Mode   Mode
	Cache  unit.Cache
	Shared *Shared
}

// New constructs a Job. The registry is responsible for allocating ID and
// registering Input in its indexing set before the job ever runs.
func New(id int, input string, args []string, mode Mode, cache unit.Cache, shared *Shared) *Job {
	return &Job{ID: id, Input: input, Args: args, Mode: mode, Cache: cache, Shared: shared}
}

// Run acquires a unit, visits it, merges the results, and returns the
// job's completion event. It never returns an error: nothing a job
// encounters propagates past this point. Absence of a unit, diagnostics,
// and cached-origin skips are all silent, observable only through the
// shared accumulators' contents (or lack of change).
func (j *Job) Run() Done {
	flags := unit.FlagSource | unit.FlagAST
	if j.Mode == Force {
		flags |= unit.FlagForce
	}

	acquired, ok := j.Cache.Acquire(j.Input, j.Args, flags)
	if !ok {
		diag.Trace("job", "no unit for %s", j.Input)
		return Done{ID: j.ID, Input: j.Input}
	}

	for _, d := range acquired.Unit.Diagnostics() {
		if d.Severity >= unit.SeverityWarning {
			diag.Warn("parse", "%s: %s", j.Input, d.Message)
		}
	}

	if acquired.Origin == unit.OriginSource {
		diag.Trace("job", "reread %s from source, revisiting", acquired.Filename)
		j.visitAndMerge(acquired)
	} else {
		diag.Trace("job", "%s served from cache, skipping re-index", j.Input)
	}

	return Done{ID: j.ID, Input: j.Input}
}

func (j *Job) visitAndMerge(acquired *unit.Acquired) {
	defs := accum.New()
	refs := accum.New()
	syms := accum.New()

	v := &visit.Visitors{
		Input:   j.Input,
		Include: j.Shared.Include,
		Defs:    defs,
		Refs:    refs,
		Syms:    syms,
	}

	acquired.Unit.VisitInclusions(v.Inclusion)
	unit.Walk(acquired.Unit.RootCursor(), v.Cursor)
	visit.FilenameSymbol(acquired.Filename, syms)

	// Each merge acquires exactly one accumulator mutex at a time, never
	// two at once, so no deadlock is possible by construction.
	j.Shared.Defs.MergeFrom(defs)
	j.Shared.Refs.MergeFrom(refs)
	j.Shared.Syms.MergeFrom(syms)
}
