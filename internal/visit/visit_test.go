package visit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/cxref/internal/accum"
	"github.com/standardbeagle/cxref/internal/unit"
)

// fakeCursor is a minimal in-memory unit.Cursor for exercising the
// traversal policy without a real parser.
type fakeCursor struct {
	kind        unit.Kind
	isDef       bool
	usr         string
	displayName string
	parent      *fakeCursor
	referenced  *fakeCursor
	loc         unit.Location
	children    []*fakeCursor
}

func (c *fakeCursor) Kind() unit.Kind         { return c.kind }
func (c *fakeCursor) IsDefinition() bool      { return c.isDef }
func (c *fakeCursor) USR() string             { return c.usr }
func (c *fakeCursor) DisplayName() string     { return c.displayName }
func (c *fakeCursor) Location() unit.Location { return c.loc }

func (c *fakeCursor) SemanticParent() (unit.Cursor, bool) {
	if c.parent == nil {
		return nil, false
	}
	return c.parent, true
}

func (c *fakeCursor) Referenced() (unit.Cursor, bool) {
	if c.referenced == nil {
		return nil, false
	}
	return c.referenced, true
}

func (c *fakeCursor) Children() []unit.Cursor {
	out := make([]unit.Cursor, len(c.children))
	for i, ch := range c.children {
		out[i] = ch
	}
	return out
}

func newVisitors(input string) *Visitors {
	return &Visitors{
		Input:   input,
		Include: accum.New(),
		Defs:    accum.New(),
		Refs:    accum.New(),
		Syms:    accum.New(),
	}
}

func TestCursorVisitorRecordsDefinitionAndReference(t *testing.T) {
	v := newVisitors("/t/a.cpp")
	g := &fakeCursor{
		isDef:       true,
		usr:         "c:@F@g#I",
		displayName: "g()",
		loc:         unit.Location{Path: "/t/a.cpp", Line: 1, Col: 5},
	}

	res := v.Cursor(g)
	require.Equal(t, unit.VisitRecurse, res)

	defs := v.Defs.Drain()
	require.Contains(t, defs["c:@F@g#I"], "/t/a.cpp:1:5")

	refs := v.Refs.Drain()
	require.Contains(t, refs["c:@F@g#I"], "/t/a.cpp:1:5")

	syms := v.Syms.Drain()
	require.Contains(t, syms["g"], "c:@F@g#I")
	require.Contains(t, syms["g()"], "c:@F@g#I")
}

func TestCursorVisitorSkipsEmptyLocation(t *testing.T) {
	v := newVisitors("/t/a.cpp")
	c := &fakeCursor{usr: "c:@F@g", displayName: "g", loc: unit.Location{}}
	v.Cursor(c)
	require.Equal(t, 0, v.Defs.Len())
	require.Equal(t, 0, v.Refs.Len())
}

func TestCursorVisitorRecursesPastAccessSpecifier(t *testing.T) {
	v := newVisitors("/t/a.cpp")
	c := &fakeCursor{kind: unit.KindAccessSpecifier, usr: "irrelevant"}
	res := v.Cursor(c)
	require.Equal(t, unit.VisitRecurse, res)
	require.Equal(t, 0, v.Refs.Len())
}

func TestCursorVisitorFallsBackToReferencedUSR(t *testing.T) {
	v := newVisitors("/t/a.cpp")
	ref := &fakeCursor{usr: "c:@F@real"}
	c := &fakeCursor{
		usr:         "c:", // sentinel
		displayName: "use",
		referenced:  ref,
		loc:         unit.Location{Path: "/t/a.cpp", Line: 2, Col: 1},
	}
	v.Cursor(c)
	refs := v.Refs.Drain()
	require.Contains(t, refs["c:@F@real"], "/t/a.cpp:2:1")
}

func TestCursorVisitorIgnoresDoubleSentinel(t *testing.T) {
	v := newVisitors("/t/a.cpp")
	ref := &fakeCursor{usr: "c:"}
	c := &fakeCursor{usr: "", referenced: ref, loc: unit.Location{Path: "/t/a.cpp", Line: 1, Col: 1}}
	v.Cursor(c)
	require.Equal(t, 0, v.Refs.Len())
}

func TestAddNamePermutationsQualifiedNames(t *testing.T) {
	// namespace N { struct S { void m(int); }; }: N::S::m(int)
	ns := &fakeCursor{displayName: "N"}
	st := &fakeCursor{displayName: "S", parent: ns}
	m := &fakeCursor{displayName: "m(int)", parent: st}

	syms := accum.New()
	addNamePermutations(m, "USR1", syms)

	snap := syms.Drain()
	for _, want := range []string{"m(int)", "m", "S::m(int)", "S::m", "N::S::m(int)", "N::S::m"} {
		require.Containsf(t, snap, want, "missing permutation %q", want)
		require.Contains(t, snap[want], "USR1")
	}
}

func TestFilenameSymbol(t *testing.T) {
	syms := accum.New()
	FilenameSymbol("/t/a.cpp", syms)
	snap := syms.Drain()
	require.Contains(t, snap["a.cpp"], "/t/a.cpp")
}

func TestFilenameSymbolEscapedSlash(t *testing.T) {
	syms := accum.New()
	// "a\/b" -> the slash is escaped by one backslash, so it is not a
	// separator; there is no unescaped '/' so no symbol is produced.
	FilenameSymbol(`a\/b`, syms)
	require.Equal(t, 0, syms.Len())
}

func TestInclusionVisitorExcludesSelf(t *testing.T) {
	v := newVisitors("/t/a.cpp")
	v.Inclusion("/t/h.h", []unit.Location{{Path: "/t/a.cpp"}})

	inc := v.Include.Drain()
	require.Contains(t, inc["/t/h.h"], "/t/a.cpp")
	require.NotContains(t, inc, "/t/a.cpp")
}
