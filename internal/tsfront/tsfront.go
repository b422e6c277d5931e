// Package tsfront is the engine's default front end: a unit.Cache/
// unit.TranslationUnit/unit.Cursor implementation over
// tree-sitter/go-tree-sitter and tree-sitter/tree-sitter-cpp.
//
// tree-sitter is syntactic, not semantic: it has no USR concept and no
// real declaration/use resolution. Cache approximates both with a
// single-pass, per-translation-unit name table (declarationTable) and a
// content-hash keyed re-parse cache, deliberately simpler than a
// compiler front end's cross-translation-unit USRs.
package tsfront

import (
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"github.com/standardbeagle/cxref/internal/diag"
	"github.com/standardbeagle/cxref/internal/unit"
)

// cached is one entry in the Cache's content-hash keyed store.
type cached struct {
	contentHash uint64
	tu          *translationUnit
}

// Cache is the default unit.Cache: it reparses a file only when its
// content hash changes or FlagForce is set.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cached
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[string]*cached)}
}

// Acquire implements unit.Cache.
func (c *Cache) Acquire(input string, args []string, flags unit.AcquireFlags) (*unit.Acquired, bool) {
	content, err := os.ReadFile(input)
	if err != nil {
		diag.Trace("tsfront", "read %s: %v", input, err)
		return nil, false
	}
	hash := xxhash.Sum64(content)

	c.mu.Lock()
	entry, ok := c.entries[input]
	if ok && entry.contentHash == hash && flags&unit.FlagForce == 0 {
		c.mu.Unlock()
		return &unit.Acquired{Unit: entry.tu, Filename: input, Origin: unit.OriginCached}, true
	}
	c.mu.Unlock()

	tu, diags, err := parse(input, content)
	if err != nil {
		diag.Warn("tsfront", "parse %s: %v", input, err)
		return nil, false
	}
	tu.diags = diags

	c.mu.Lock()
	c.entries[input] = &cached{contentHash: hash, tu: tu}
	c.mu.Unlock()

	return &unit.Acquired{Unit: tu, Filename: input, Origin: unit.OriginSource}, true
}

var (
	langOnce sync.Once
	language *tree_sitter.Language
)

func cppLanguage() *tree_sitter.Language {
	langOnce.Do(func() {
		language = tree_sitter.NewLanguage(tree_sitter_cpp.Language())
	})
	return language
}

func parse(filename string, content []byte) (*translationUnit, []unit.Diagnostic, error) {
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(cppLanguage()); err != nil {
		return nil, nil, err
	}

	tree := parser.Parse(content, nil)
	defer tree.Close()
	root := tree.RootNode()

	tu := &translationUnit{
		filename: filename,
		content:  content,
	}
	tu.table = buildDeclarationTable(tu, root)

	var diags []unit.Diagnostic
	if root.HasError() {
		diags = append(diags, unit.Diagnostic{Severity: unit.SeverityWarning, Message: "parse errors in " + filename})
	}
	return tu, diags, nil
}
