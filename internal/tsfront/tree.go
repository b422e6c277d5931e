package tsfront

import (
	"github.com/standardbeagle/cxref/internal/unit"
)

// translationUnit is the default unit.TranslationUnit.
type translationUnit struct {
	filename string
	content  []byte
	table    *declarationTable
	diags    []unit.Diagnostic
}

func (tu *translationUnit) Filename() string               { return tu.filename }
func (tu *translationUnit) Diagnostics() []unit.Diagnostic { return tu.diags }

func (tu *translationUnit) RootCursor() unit.Cursor {
	return &rootCursor{items: tu.table.items}
}

// VisitInclusions walks direct #include directives. tree-sitter does not
// preprocess, so there is no transitive include stack to report: each
// inclusion's stack is just the including file itself, enough to
// exercise self-exclusion but not to reproduce a multi-level include
// chain.
func (tu *translationUnit) VisitInclusions(fn unit.InclusionFunc) {
	for _, inc := range tu.table.includes {
		fn(inc, []unit.Location{{Path: tu.filename}})
	}
}

// item is one flattened AST fact the declaration-table pass extracted:
// either a definition site or a usage site.
type item struct {
	kind     unit.Kind
	isDef    bool
	usr      string
	name     string
	loc      unit.Location
	parent   *item
	refUsr   string // non-empty once a usage resolves to a known declaration
	resolved bool
}

// itemCursor adapts one item to unit.Cursor. It is always a leaf: the
// flattening pass already visited every interesting node, so Children
// returning nil does not lose coverage. Every interesting cursor is
// reached exactly once; the wrapper need not mirror the real syntax
// tree shape.
type itemCursor struct {
	it *item
}

func (c *itemCursor) Kind() unit.Kind         { return c.it.kind }
func (c *itemCursor) IsDefinition() bool      { return c.it.isDef }
func (c *itemCursor) DisplayName() string     { return c.it.name }
func (c *itemCursor) Location() unit.Location { return c.it.loc }
func (c *itemCursor) Children() []unit.Cursor { return nil }

func (c *itemCursor) USR() string {
	if c.it.isDef || c.it.resolved {
		return c.it.usr
	}
	return "" // unresolved usage: sentinel, forces Referenced() fallback
}

func (c *itemCursor) SemanticParent() (unit.Cursor, bool) {
	if c.it.parent == nil {
		return nil, false
	}
	return &itemCursor{it: c.it.parent}, true
}

func (c *itemCursor) Referenced() (unit.Cursor, bool) {
	if c.it.isDef || !c.it.resolved {
		return nil, false
	}
	return &itemCursor{it: &item{isDef: true, usr: c.it.refUsr, name: c.it.name}}, true
}

// rootCursor is the synthetic cursor whose children are every item the
// declaration-table pass collected, in document order.
type rootCursor struct {
	items []*item
}

func (c *rootCursor) Kind() unit.Kind                     { return unit.KindOther }
func (c *rootCursor) IsDefinition() bool                  { return false }
func (c *rootCursor) USR() string                         { return "" }
func (c *rootCursor) DisplayName() string                 { return "" }
func (c *rootCursor) Location() unit.Location             { return unit.Location{} }
func (c *rootCursor) SemanticParent() (unit.Cursor, bool) { return nil, false }
func (c *rootCursor) Referenced() (unit.Cursor, bool)     { return nil, false }

func (c *rootCursor) Children() []unit.Cursor {
	out := make([]unit.Cursor, len(c.items))
	for i, it := range c.items {
		out[i] = &itemCursor{it: it}
	}
	return out
}
