package store

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/smilemakc/gardenflow/gardenerr"
	"github.com/smilemakc/gardenflow/gardenmodel"
)

// Bun is the Postgres-backed DataStore, grounded on
// the now-removed internal/infrastructure/storage/bun_store.go's sql.OpenDB(pgdriver...) +
// bun.NewDB setup and ON CONFLICT upsert idiom, adapted from its original
// per-entity-kind model set down to the single data_points table the
// persistence format calls for.
type Bun struct {
	db *bun.DB
}

// NewBun opens a Postgres-backed store against dsn. It does not create the
// schema; call InitSchema once at startup.
func NewBun(dsn string) *Bun {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &Bun{db: bun.NewDB(sqldb, pgdialect.New())}
}

// NewBunFromDB wraps an already-constructed *bun.DB, letting tests inject a
// sqlmock-backed connection without going through the pgdriver dial path.
func NewBunFromDB(db *bun.DB) *Bun {
	return &Bun{db: db}
}

// InitSchema creates data_points and its uniqueness index if they don't
// already exist.
func (s *Bun) InitSchema(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*dataModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return &gardenerr.StoreError{Op: "init schema", Cause: err}
	}
	_, err := s.db.NewCreateIndex().
		Model((*dataModel)(nil)).
		Unique().
		IfNotExists().
		Index("data_points_key_idx").
		Column("entity", "name", "version", "lineage").
		Exec(ctx)
	if err != nil {
		return &gardenerr.StoreError{Op: "init index", Cause: err}
	}
	return nil
}

func (s *Bun) Put(ctx context.Context, d gardenmodel.Data) (bool, error) {
	var changed bool
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		existing := new(dataModel)
		err := tx.NewSelect().
			Model(existing).
			Where("entity = ? AND name = ? AND version = ? AND lineage = ?", d.Entity(), d.Name(), d.Version(), d.Lineage()).
			Scan(ctx)
		switch {
		case err == sql.ErrNoRows:
			changed = true
		case err != nil:
			return err
		default:
			changed = existing.Value != d.Value()
		}

		if !changed {
			return nil
		}

		model := newDataModel(d)
		_, err = tx.NewInsert().
			Model(model).
			On("CONFLICT (entity, name, version, lineage) DO UPDATE").
			Set("value = EXCLUDED.value").
			Set("entrydate = EXCLUDED.entrydate").
			Exec(ctx)
		return err
	})
	if err != nil {
		return false, &gardenerr.StoreError{Op: "put", Cause: err}
	}
	return changed, nil
}

func (s *Bun) Get(ctx context.Context, entity string, name, version, lineage *string) ([]gardenmodel.Data, error) {
	var models []dataModel
	q := s.db.NewSelect().Model(&models).Where("entity = ?", entity)
	if name != nil {
		q = q.Where("name = ?", *name)
	}
	if version != nil {
		q = q.Where("version = ?", *version)
	}
	if lineage != nil {
		q = q.Where("lineage = ?", *lineage)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, &gardenerr.StoreError{Op: "get", Cause: err}
	}

	out := make([]gardenmodel.Data, len(models))
	for i, m := range models {
		out[i] = m.toDomain()
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (s *Bun) Close() error {
	return s.db.Close()
}
