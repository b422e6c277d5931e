// Package kvstore defines the persistent key/value store contract (key
// bytes -> newline-delimited value-list bytes) and provides the engine's
// default backend over modernc.org/sqlite.
package kvstore

// Kind names one of the four backing stores.
type Kind string

const (
	KindInclude    Kind = "include"
	KindDefinition Kind = "definition"
	KindReference  Kind = "reference"
	KindSymbol     Kind = "symbol"
)

// Kinds lists every store kind the synchronizer drains, in a stable order.
var Kinds = []Kind{KindInclude, KindDefinition, KindReference, KindSymbol}

// Store is one opened backing store. Get returns the raw newline-delimited
// bytes stored at key ("" if absent; readers split on '\n' and discard
// empty components themselves). Batch starts a write batch scoped to this
// store.
type Store interface {
	Get(key string) (string, error)
	Batch() Batch
	Close() error
}

// Batch accumulates Puts for one atomic commit.
type Batch interface {
	Put(key, value string)
	Commit() error
}

// Opener opens the backing store for one kind, creating it if missing.
// Each sync opens and closes independently; no long-lived handle is
// required.
type Opener interface {
	Open(kind Kind) (Store, error)
}
