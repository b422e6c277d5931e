package resource

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/cxref/internal/diag"
)

// record is the on-disk shape of one resource file: the original input
// path passed to Index, plus the compile args it was indexed with.
type record struct {
	Input string   `toml:"input"`
	Args  []string `toml:"args"`
}

// FileStore is the default Store: one TOML file per (file, kind) pair
// under root, named by a flattened form of file's path.
type FileStore struct {
	mu   sync.Mutex
	root string
}

// NewFileStore returns a FileStore rooted at dir, creating it if missing.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{root: dir}, nil
}

func (s *FileStore) path(file string, kind Kind) string {
	flat := filepath.ToSlash(file)
	flat = escapePath(flat)
	return filepath.Join(s.root, flat+"."+string(kind)+".toml")
}

func (s *FileStore) Exists(file string, kind Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := os.Stat(s.path(file, kind))
	return err == nil
}

func (s *FileStore) Read(file string, kind Kind) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(file, kind))
	if err != nil {
		return nil, err
	}
	var rec record
	if err := toml.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rec.Args)+1)
	out = append(out, rec.Input)
	out = append(out, rec.Args...)
	return out, nil
}

// Write stores input's resource record for file under kind. Called by
// the CLI (cmd/cxref) before it submits a fresh Index, so a later
// Reindex can recover it.
func (s *FileStore) Write(file string, kind Kind, input string, args []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(record{Input: input, Args: args})
	if err != nil {
		return err
	}
	p := s.path(file, kind)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		diag.Warn("resource", "write %s: %v", p, err)
		return err
	}
	return nil
}

// escapePath replaces path separators so a nested input path collapses
// to a single flat filename instead of creating directories.
func escapePath(p string) string {
	out := make([]byte, 0, len(p))
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '/', '\\', ':':
			out = append(out, '_')
		default:
			out = append(out, p[i])
		}
	}
	return string(out)
}
