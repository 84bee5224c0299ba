// Package store implements IDataStore: the content-addressed fact table that
// backs the gardener. Put is keyed by (entity, name, version, lineage) and
// reports whether the write actually changed the stored value, which is the
// change-detection gate the rest of the pipeline relies on. Get returns every
// row matching the required entity and whichever optional filters are given.
//
// Three implementations are provided: Memory (tests and single-process use),
// Bun (Postgres, grounded on the now-removed internal/infrastructure/storage/bun_store.go),
// and SQLite (the wire-persistence profile named by the external interfaces,
// sharing the same bun model and table layout as Bun but over
// bun/dialect/sqlitedialect + modernc.org/sqlite).
package store

import (
	"context"

	"github.com/smilemakc/gardenflow/gardenmodel"
)

// DataStore is the contract every backing store implements.
type DataStore interface {
	// Put writes d keyed by (entity, name, version, lineage). changed is true
	// iff the key was previously absent or its stored value differs.
	Put(ctx context.Context, d gardenmodel.Data) (changed bool, err error)

	// Get returns every Data row matching entity and whichever of name,
	// version, lineage are non-nil. Ordering is unspecified.
	Get(ctx context.Context, entity string, name, version, lineage *string) ([]gardenmodel.Data, error)
}

// Str is a convenience constructor for the optional *string filter args Get
// takes, so call sites can write store.Str("flour") instead of &s boilerplate.
func Str(s string) *string { return &s }
