package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/smilemakc/gardenflow/store"
)

// OpenStore constructs the DataStore named by uri: "memory" for an
// in-process store, "sqlite:<path>" for the SQLite profile, or a bare
// postgres:// DSN for the Bun/Postgres profile.
//
// Grounded on factory.go's NewMemoryStorage/NewPostgresStorage constructor
// pair, generalized from two fixed choices to a scheme-dispatched one
// covering all three store.DataStore implementations.
func OpenStore(ctx context.Context, uri string) (store.DataStore, error) {
	switch {
	case uri == "" || uri == "memory":
		return store.NewMemory(), nil

	case strings.HasPrefix(uri, "sqlite:"):
		path := strings.TrimPrefix(uri, "sqlite:")
		s, err := store.NewSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("config: opening sqlite store: %w", err)
		}
		if err := s.InitSchema(ctx); err != nil {
			return nil, fmt.Errorf("config: initializing sqlite schema: %w", err)
		}
		return s, nil

	case strings.HasPrefix(uri, "postgres://") || strings.HasPrefix(uri, "postgresql://"):
		s := store.NewBun(uri)
		if err := s.InitSchema(ctx); err != nil {
			return nil, fmt.Errorf("config: initializing postgres schema: %w", err)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("config: unrecognized store URI %q", uri)
	}
}
