package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/cxref/internal/job"
)

type fakeIndexer struct {
	mu        sync.Mutex
	reindexed []string
}

func (f *fakeIndexer) Reindex(filename string, mode job.Mode) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reindexed = append(f.reindexed, filename)
	return 1, nil
}

func (f *fakeIndexer) Index(input string, args []string, mode job.Mode) (int, error) {
	return 1, nil
}

func (f *fakeIndexer) seen(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.reindexed {
		if p == path {
			return true
		}
	}
	return false
}

func TestWatcherDebouncesWritesIntoReindex(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.cpp")
	require.NoError(t, os.WriteFile(target, []byte("int main(){}"), 0o644))

	idx := &fakeIndexer{}
	w, err := New(dir, []string{"*.cpp"}, nil, 20*time.Millisecond, idx)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(target, []byte("int main(){return 0;}"), 0o644))

	require.Eventually(t, func() bool {
		return idx.seen(target)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherIgnoresNonMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(target, []byte("hi"), 0o644))

	idx := &fakeIndexer{}
	w, err := New(dir, []string{"*.cpp"}, nil, 20*time.Millisecond, idx)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(target, []byte("hi again"), 0o644))

	time.Sleep(200 * time.Millisecond)
	require.False(t, idx.seen(target))
}
