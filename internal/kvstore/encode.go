package kvstore

import (
	"sort"
	"strings"
)

// Decode splits raw newline-delimited value bytes into a set, discarding
// empty items.
func Decode(raw string) map[string]struct{} {
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, "\n")
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it == "" {
			continue
		}
		set[it] = struct{}{}
	}
	return set
}

// Encode renders a value set as the concatenation of each item followed
// by a trailing newline, one item per line. No particular order is
// required on disk; sorting just makes syncs reproducible for tests and
// diffs.
func Encode(set map[string]struct{}) string {
	items := make([]string, 0, len(set))
	for v := range set {
		items = append(items, v)
	}
	sort.Strings(items)

	var b strings.Builder
	for _, it := range items {
		b.WriteString(it)
		b.WriteByte('\n')
	}
	return b.String()
}
