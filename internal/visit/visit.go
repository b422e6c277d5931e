// Package visit implements the two AST traversal callbacks the indexing
// engine runs per job: the inclusion visitor (include-graph edges) and the
// cursor visitor (definitions, references, symbol-name permutations).
package visit

import (
	"strings"

	"github.com/standardbeagle/cxref/internal/accum"
	"github.com/standardbeagle/cxref/internal/unit"
)

// sentinelUSR is the prefix-only USR clang assigns to cursors it cannot
// resolve, e.g. uses of unresolved names.
const sentinelUSR = "c:"

// Visitors bundles the accumulators one job's traversal writes into: the
// shared Include accumulator (written directly, per edge, under its own
// mutex) and the job-local Definition/Reference/Symbol accumulators
// (merged into the shared ones after traversal).
type Visitors struct {
	Input string // the job's own input path; never included in its own edges

	Include *accum.Accumulator // shared
	Defs    *accum.Accumulator // job-local
	Refs    *accum.Accumulator // job-local
	Syms    *accum.Accumulator // job-local
}

// Inclusion is the inclusion-visitor callback: for the included file and
// every file on the inclusion stack except the job's own input, add an
// edge included_path -> input_path to the Include accumulator.
func (v *Visitors) Inclusion(includedFile string, stack []unit.Location) {
	v.addInclusion(includedFile)
	for _, loc := range stack {
		v.addInclusion(loc.Path)
	}
}

func (v *Visitors) addInclusion(path string) {
	if path == "" || path == v.Input {
		return
	}
	v.Include.Insert(path, v.Input)
}

// Cursor is the cursor-visitor callback, invoked pre-order over every
// cursor in the translation unit. It always returns VisitRecurse: nothing
// in this policy ever prunes a subtree.
func (v *Visitors) Cursor(cursor unit.Cursor) unit.VisitResult {
	if cursor.Kind() == unit.KindAccessSpecifier {
		return unit.VisitRecurse
	}

	usr, ok := resolveUSR(cursor)
	if !ok {
		return unit.VisitRecurse
	}

	loc := cursor.Location()
	if loc.Path == "" {
		return unit.VisitRecurse
	}
	locStr := loc.String()

	if cursor.IsDefinition() {
		v.Defs.Insert(usr, locStr)
		addNamePermutations(cursor, usr, v.Syms)
	}
	v.Refs.Insert(usr, locStr)

	return unit.VisitRecurse
}

// resolveUSR fetches a cursor's USR, falling back to the USR of the cursor
// it references when its own is empty or the sentinel. If the fallback is
// also empty/sentinel, the cursor is not recordable.
func resolveUSR(cursor unit.Cursor) (string, bool) {
	if usr := cursor.USR(); !isSentinel(usr) {
		return usr, true
	}
	ref, ok := cursor.Referenced()
	if !ok {
		return "", false
	}
	if usr := ref.USR(); !isSentinel(usr) {
		return usr, true
	}
	return "", false
}

func isSentinel(usr string) bool {
	return usr == "" || usr == sentinelUSR
}

// addNamePermutations walks semantic parents from cursor upward,
// accumulating "with-parameters" and "without-parameters" qualified-name
// prefixes and inserting both forms (when they differ) at every step.
func addNamePermutations(cursor unit.Cursor, usr string, syms *accum.Accumulator) {
	var qparam, qnoparam string
	cur := cursor
	for {
		name := cur.DisplayName()
		if name == "" {
			return
		}
		if qparam == "" {
			qparam = name
			qnoparam = name
			if idx := strings.IndexByte(qnoparam, '('); idx != -1 {
				qnoparam = qnoparam[:idx]
			}
		} else {
			qparam = name + "::" + qparam
			qnoparam = name + "::" + qnoparam
		}

		syms.Insert(qparam, usr)
		if qparam != qnoparam {
			syms.Insert(qnoparam, usr)
		}

		parent, ok := cur.SemanticParent()
		if !ok {
			return
		}
		cur = parent
	}
}

// FilenameSymbol inserts basename(filename) -> filename into syms, so a
// translation unit is also findable by its own bare filename. It is a
// no-op if filename contains no unescaped '/'.
func FilenameSymbol(filename string, syms *accum.Accumulator) {
	base, ok := basename(filename)
	if !ok {
		return
	}
	syms.Insert(base, filename)
}

// basename returns the substring of filename after the last unescaped '/'.
// A '/' is escaped by an immediately preceding odd run of backslashes.
// Canonicalized paths, the only kind the engine ever sees, contain no
// backslashes, so this reduces to "everything after the last slash".
// Pathological backslash runs crafted to defeat the scan are not
// specially handled: paths must be canonicalized before indexing.
func basename(filename string) (string, bool) {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] != '/' {
			continue
		}
		backslashes := 0
		for j := i - 1; j >= 0 && filename[j] == '\\'; j-- {
			backslashes++
		}
		if backslashes%2 == 0 {
			return filename[i+1:], true
		}
		i -= backslashes
	}
	return "", false
}
