package store

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	"github.com/smilemakc/gardenflow/gardenerr"
	"github.com/smilemakc/gardenflow/gardenmodel"
)

// SQLite is the file-backed DataStore named in the external interfaces as
// the store persistence format: one data_points table with a UNIQUE index
// over (entity, name, version, lineage). It shares dataModel and all query
// logic with Bun; only the driver and dialect differ, borrowed from
// dshills-langgraph-go's use of modernc.org/sqlite as a cgo-free driver.
type SQLite struct {
	db *bun.DB
}

// NewSQLite opens (creating if absent) the sqlite database file at path.
func NewSQLite(path string) (*SQLite, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &gardenerr.StoreError{Op: "open", Cause: err}
	}
	sqldb.SetMaxOpenConns(1) // modernc.org/sqlite: single writer, per its own documented constraint
	return &SQLite{db: bun.NewDB(sqldb, sqlitedialect.New())}, nil
}

func (s *SQLite) InitSchema(ctx context.Context) error {
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

func (s *SQLite) Put(ctx context.Context, d gardenmodel.Data) (bool, error) {
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

func (s *SQLite) Get(ctx context.Context, entity string, name, version, lineage *string) ([]gardenmodel.Data, error) {
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

func (s *SQLite) Close() error {
	return s.db.Close()
}
