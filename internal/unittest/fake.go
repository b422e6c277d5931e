// Package unittest provides minimal in-memory implementations of the
// internal/unit interfaces for tests that exercise the engine above the
// parser boundary, without depending on internal/tsfront.
package unittest

import "github.com/standardbeagle/cxref/internal/unit"

// Cursor is an exported, settable unit.Cursor for tests.
type Cursor struct {
	Kind_  unit.Kind
	Def    bool
	Usr    string
	Name   string
	Parent *Cursor
	Ref    *Cursor
	Loc    unit.Location
	Kids   []*Cursor
}

func (c *Cursor) Kind() unit.Kind         { return c.Kind_ }
func (c *Cursor) IsDefinition() bool      { return c.Def }
func (c *Cursor) USR() string             { return c.Usr }
func (c *Cursor) DisplayName() string     { return c.Name }
func (c *Cursor) Location() unit.Location { return c.Loc }

func (c *Cursor) SemanticParent() (unit.Cursor, bool) {
	if c.Parent == nil {
		return nil, false
	}
	return c.Parent, true
}

func (c *Cursor) Referenced() (unit.Cursor, bool) {
	if c.Ref == nil {
		return nil, false
	}
	return c.Ref, true
}

func (c *Cursor) Children() []unit.Cursor {
	out := make([]unit.Cursor, len(c.Kids))
	for i, k := range c.Kids {
		out[i] = k
	}
	return out
}

// TranslationUnit is an exported, settable unit.TranslationUnit for tests.
type TranslationUnit struct {
	Name       string
	Root       *Cursor
	Inclusions []Inclusion
	Diags      []unit.Diagnostic
}

// Inclusion is one recorded call an exported VisitInclusions should make.
type Inclusion struct {
	File  string
	Stack []unit.Location
}

func (tu *TranslationUnit) Filename() string               { return tu.Name }
func (tu *TranslationUnit) RootCursor() unit.Cursor        { return tu.Root }
func (tu *TranslationUnit) Diagnostics() []unit.Diagnostic { return tu.Diags }

func (tu *TranslationUnit) VisitInclusions(fn unit.InclusionFunc) {
	for _, inc := range tu.Inclusions {
		fn(inc.File, inc.Stack)
	}
}

// Cache is a scripted unit.Cache: each input path maps to a canned
// response (or nothing, simulating a parse-absent job).
type Cache struct {
	Responses map[string]*unit.Acquired
	// Calls records every Acquire call, for assertions about flags/args.
	Calls []CacheCall
}

// CacheCall records one Acquire invocation.
type CacheCall struct {
	Input string
	Args  []string
	Flags unit.AcquireFlags
}

func (c *Cache) Acquire(input string, args []string, flags unit.AcquireFlags) (*unit.Acquired, bool) {
	c.Calls = append(c.Calls, CacheCall{Input: input, Args: args, Flags: flags})
	a, ok := c.Responses[input]
	if !ok {
		return nil, false
	}
	return a, true
}
