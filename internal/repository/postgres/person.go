package postgres

import (
	"database/sql"

	"github.com/rs/zerolog"

	"peopleapi/internal/model"
)

// PersonTable maps model.Person onto the people table.
var PersonTable = Table[*model.Person]{
	Name:    "people",
	Columns: []string{"first_name", "last_name"},
	New:     func() *model.Person { return &model.Person{} },
	Values: func(p *model.Person) []any {
		return []any{p.FirstName, p.LastName}
	},
	Targets: func(p *model.Person) []any {
		return []any{&p.FirstName, &p.LastName}
	},
}

// NewPersonRepository creates the people repository.
func NewPersonRepository(db *sql.DB, log zerolog.Logger) *Repository[*model.Person] {
	return NewRepository(db, PersonTable, log)
}
