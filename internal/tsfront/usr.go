package tsfront

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// synthesizeUSR derives a stable per-declaration identifier from its
// kind, name, and enclosing scope chain, hashed with xxhash. tree-sitter
// has no USR concept of its own, so this is the closest syntactic
// analog: two declarations hash identically only if their (kind, name,
// scope chain) all match, giving the synchronizer a "same entity, same
// string" key to union by.
func synthesizeUSR(kind, name string, parent *item) string {
	h := xxhash.New()
	_, _ = h.WriteString(kind)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(name)
	for p := parent; p != nil; p = p.parent {
		_, _ = h.WriteString("|")
		_, _ = h.WriteString(p.name)
	}
	return "c:@" + strconv.FormatUint(h.Sum64(), 16)
}
