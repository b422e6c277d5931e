// Package syncer drains the engine's shared accumulators into their
// backing stores: read-merge-write, preserving every previously stored
// value.
package syncer

import (
	"github.com/standardbeagle/cxref/internal/accum"
	"github.com/standardbeagle/cxref/internal/diag"
	"github.com/standardbeagle/cxref/internal/kvstore"
	"github.com/standardbeagle/cxref/internal/xerrors"
)

// Store pairs a store kind with the accumulator it is synced from.
type Store struct {
	Kind kvstore.Kind
	Acc  *accum.Accumulator
}

// Synchronizer drains accumulators into kvstore.Store instances opened
// through an Opener.
type Synchronizer struct {
	opener kvstore.Opener
}

// New returns a Synchronizer backed by opener.
func New(opener kvstore.Opener) *Synchronizer {
	return &Synchronizer{opener: opener}
}

// Sync drains every store in turn. The stores are independent: a failure
// syncing one never prevents the others from syncing.
func (s *Synchronizer) Sync(stores []Store) {
	for _, st := range stores {
		s.syncOne(st.Kind, st.Acc)
	}
}

// syncOne opens the store, drains the accumulator, and merges the
// drained values into whatever the store already had, writing only when
// something new showed up.
func (s *Synchronizer) syncOne(kind kvstore.Kind, acc *accum.Accumulator) {
	store, err := s.opener.Open(kind)
	if err != nil {
		// Abort this store's sync. The accumulator is not drained, so its
		// data survives for the next sync attempt.
		diag.Warn("sync", "%v", xerrors.NewStoreError(string(kind), "open", err))
		return
	}
	defer store.Close()

	// The accumulator's own mutex is acquired (and the data cleared) by
	// Drain, which returns an atomic snapshot: no insert arriving after
	// this point is lost, it simply lands in the next sync's accumulator.
	snapshot := acc.Drain()
	if len(snapshot) == 0 {
		return
	}

	batch := store.Batch()
	for key, newValues := range snapshot {
		existingRaw, err := store.Get(key)
		if err != nil {
			diag.Warn("sync", "%v", xerrors.NewStoreError(string(kind), "get "+key, err))
			continue
		}
		existing := kvstore.Decode(existingRaw)
		if containsAll(existing, newValues) {
			continue // already a superset: no write needed
		}
		batch.Put(key, kvstore.Encode(union(existing, newValues)))
	}

	if err := batch.Commit(); err != nil {
		diag.Warn("sync", "%v", xerrors.NewStoreError(string(kind), "commit", err))
	}
}

func containsAll(existing, subset map[string]struct{}) bool {
	for v := range subset {
		if _, ok := existing[v]; !ok {
			return false
		}
	}
	return true
}

func union(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for v := range a {
		out[v] = struct{}{}
	}
	for v := range b {
		out[v] = struct{}{}
	}
	return out
}
