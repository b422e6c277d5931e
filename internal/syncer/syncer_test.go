package syncer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/cxref/internal/accum"
	"github.com/standardbeagle/cxref/internal/kvstore"
)

func TestSyncWritesUnionAndClearsAccumulator(t *testing.T) {
	opener := kvstore.NewMockOpener()
	s := New(opener)

	acc := accum.New()
	acc.Insert("c:@F@g#I", "/t/a.cpp:1:5")

	s.Sync([]Store{{Kind: kvstore.KindDefinition, Acc: acc}})

	snap := opener.Snapshot(kvstore.KindDefinition)
	require.Equal(t, "/t/a.cpp:1:5\n", snap["c:@F@g#I"])
	require.Equal(t, 0, acc.Len())
}

func TestSyncIsIdempotentAcrossRuns(t *testing.T) {
	// S4: run the same accumulation twice; the second sync must write
	// zero Put operations because the store already contains everything.
	opener := kvstore.NewMockOpener()
	s := New(opener)

	newAcc := func() *accum.Accumulator {
		a := accum.New()
		a.Insert("c:@F@g#I", "/t/a.cpp:1:5")
		return a
	}

	s.Sync([]Store{{Kind: kvstore.KindDefinition, Acc: newAcc()}})
	firstPuts := opener.Puts(kvstore.KindDefinition)
	require.Equal(t, 1, firstPuts)

	s.Sync([]Store{{Kind: kvstore.KindDefinition, Acc: newAcc()}})
	require.Equal(t, firstPuts, opener.Puts(kvstore.KindDefinition))
}

func TestSyncPreservesExistingValuesOnUnion(t *testing.T) {
	opener := kvstore.NewMockOpener()
	s := New(opener)

	first := accum.New()
	first.Insert("k", "v1")
	s.Sync([]Store{{Kind: kvstore.KindReference, Acc: first}})

	second := accum.New()
	second.Insert("k", "v2")
	s.Sync([]Store{{Kind: kvstore.KindReference, Acc: second}})

	snap := opener.Snapshot(kvstore.KindReference)
	require.Equal(t, kvstore.Decode(snap["k"]), map[string]struct{}{"v1": {}, "v2": {}})
}

func TestSyncOnOpenFailureLeavesAccumulatorIntact(t *testing.T) {
	opener := kvstore.NewMockOpener()
	opener.OpenErr = map[kvstore.Kind]error{kvstore.KindSymbol: errors.New("disk full")}
	s := New(opener)

	acc := accum.New()
	acc.Insert("k", "v")

	s.Sync([]Store{{Kind: kvstore.KindSymbol, Acc: acc}})

	require.Equal(t, 1, acc.Len(), "accumulator must survive an open failure for retry")

	delete(opener.OpenErr, kvstore.KindSymbol)
	s.Sync([]Store{{Kind: kvstore.KindSymbol, Acc: acc}})
	require.Equal(t, 0, acc.Len())
	require.Equal(t, "v\n", opener.Snapshot(kvstore.KindSymbol)["k"])
}

func TestSyncCommutesAcrossCompletionOrder(t *testing.T) {
	// Two jobs touching overlapping keys in either completion order
	// converge to the same union.
	run := func(first, second map[string]string) map[string]string {
		opener := kvstore.NewMockOpener()
		s := New(opener)
		for _, m := range []map[string]string{first, second} {
			acc := accum.New()
			for k, v := range m {
				acc.Insert(k, v)
			}
			s.Sync([]Store{{Kind: kvstore.KindReference, Acc: acc}})
		}
		return opener.Snapshot(kvstore.KindReference)
	}

	a := map[string]string{"k": "x"}
	b := map[string]string{"k": "y"}

	require.Equal(t, run(a, b), run(b, a))
}
