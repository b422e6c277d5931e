package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReserveRejectsSecondCallForSameInput(t *testing.T) {
	// S5: a second index request for a file already indexing is rejected.
	r := New()

	id1, ok1 := r.Reserve("/t/a.cpp")
	require.True(t, ok1)

	_, ok2 := r.Reserve("/t/a.cpp")
	require.False(t, ok2)

	require.Equal(t, 1, r.InFlight())
	require.True(t, r.IsIndexing("/t/a.cpp"))
	_ = id1
}

func TestReserveAllowsDifferentInputsConcurrently(t *testing.T) {
	r := New()

	id1, ok1 := r.Reserve("/t/a.cpp")
	id2, ok2 := r.Reserve("/t/b.cpp")

	require.True(t, ok1)
	require.True(t, ok2)
	require.NotEqual(t, id1, id2)
	require.Equal(t, 2, r.InFlight())
}

func TestReserveAllocatesMonotonicIDs(t *testing.T) {
	r := New()

	id1, _ := r.Reserve("/t/a.cpp")
	id2, _ := r.Reserve("/t/b.cpp")
	id3, _ := r.Reserve("/t/c.cpp")

	require.Less(t, id1, id2)
	require.Less(t, id2, id3)
}

func TestReserveAllocatesFreshIDAfterCompletion(t *testing.T) {
	r := New()

	id1, _ := r.Reserve("/t/a.cpp")
	r.Complete(id1, "/t/a.cpp")

	id2, ok := r.Reserve("/t/a.cpp")
	require.True(t, ok)
	require.Equal(t, id1+1, id2, "ids come from the running counter, so a freed id is not handed out again")
}

func TestCompleteAllowsReservingInputAgain(t *testing.T) {
	r := New()

	id, _ := r.Reserve("/t/a.cpp")
	r.Complete(id, "/t/a.cpp")

	_, ok := r.Reserve("/t/a.cpp")
	require.True(t, ok, "completion must clear the indexing set entry")
}

func TestCompleteSignalsSyncWhenRegistryDrainsEmpty(t *testing.T) {
	r := New()

	id1, _ := r.Reserve("/t/a.cpp")
	id2, _ := r.Reserve("/t/b.cpp")

	require.False(t, r.Complete(id1, "/t/a.cpp"), "one job still in flight")
	require.True(t, r.Complete(id2, "/t/b.cpp"), "registry just drained to empty")
}

func TestCompleteSignalsSyncAtThreshold(t *testing.T) {
	r := New()

	// Keep one job permanently in flight so the registry never empties on
	// its own, isolating the counter-threshold trigger from the
	// empty-registry trigger.
	_, _ = r.Reserve("/t/hold.cpp")

	var lastSync bool
	for i := 0; i < SyncInterval; i++ {
		input := "/t/" + string(rune('a'+i)) + ".cpp"
		id, _ := r.Reserve(input)
		lastSync = r.Complete(id, input)
	}
	require.True(t, lastSync, "the SyncInterval-th completion must trigger a sync")
}

func TestCompleteResetsCounterAfterSync(t *testing.T) {
	r := New()

	hold, _ := r.Reserve("/t/hold.cpp") // keeps the registry non-empty
	_ = hold

	sawSync := 0
	for i := 0; i < SyncInterval*2; i++ {
		input := "/t/many" + string(rune('a'+i)) + ".cpp"
		id, _ := r.Reserve(input)
		if r.Complete(id, input) {
			sawSync++
		}
	}
	require.Equal(t, 2, sawSync, "the counter must reset after each threshold sync")
}

func TestPoolBoundsConcurrency(t *testing.T) {
	p := NewPool(2)

	var mu sync.Mutex
	active, peak := 0, 0
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		p.Go(func() {
			defer wg.Done()
			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()

			// Force overlap without a real sleep: a tiny busy loop.
			for j := 0; j < 1000; j++ {
			}

			mu.Lock()
			active--
			mu.Unlock()
		})
	}
	wg.Wait()

	require.LessOrEqual(t, peak, 2)
}

func TestNewPoolRaisesParallelismFloor(t *testing.T) {
	p := NewPool(1)
	require.NotNil(t, p)
	// The pool must still allow at least 2 concurrent tasks even when
	// asked for fewer.
	var wg sync.WaitGroup
	started := make(chan struct{}, 2)
	release := make(chan struct{})

	for i := 0; i < 2; i++ {
		wg.Add(1)
		p.Go(func() {
			defer wg.Done()
			started <- struct{}{}
			<-release
		})
	}

	<-started
	<-started
	close(release)
	wg.Wait()
}
