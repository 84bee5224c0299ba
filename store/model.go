package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/smilemakc/gardenflow/gardenmodel"
)

// dataModel is the bun row type shared by the Bun (Postgres) and SQLite
// store profiles, matching the persistence format named in the external
// interfaces: one table with a UNIQUE index over
// (entity, name, version, lineage) implementing the change-detection
// contract at the database layer, backing up the application-level check
// Memory performs in Go.
type dataModel struct {
	bun.BaseModel `bun:"table:data_points,alias:d"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	EntryDate time.Time `bun:"entrydate,notnull"`
	Entity    string    `bun:"entity,notnull"`
	Name      string    `bun:"name,notnull"`
	Version   string    `bun:"version,notnull"`
	Lineage   string    `bun:"lineage,notnull"`
	Value     string    `bun:"value,notnull"`
}

func newDataModel(d gardenmodel.Data) *dataModel {
	return &dataModel{
		ID:        uuid.New(),
		EntryDate: time.Now(),
		Entity:    d.Entity(),
		Name:      d.Name(),
		Version:   d.Version(),
		Lineage:   d.Lineage(),
		Value:     d.Value(),
	}
}

func (m *dataModel) toDomain() gardenmodel.Data {
	return gardenmodel.NewData(m.Entity, m.Name, m.Version, m.Lineage, m.Value)
}
