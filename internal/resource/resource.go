// Package resource defines the external resource-store interface
// ("exists", "read", kind Information) and provides its default
// implementation: a flat per-input-path TOML record, built on
// pelletier/go-toml.
package resource

// Kind names a resource record category. Information is the only kind
// the engine core consumes: its first field is the original input path,
// the remainder is the stored compile-args list.
type Kind string

const KindInformation Kind = "information"

// Store is the external resource store consulted by Reindex.
type Store interface {
	Exists(file string, kind Kind) bool
	Read(file string, kind Kind) ([]string, error)
}
