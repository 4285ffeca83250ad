package postgres

import (
	"database/sql"

	"github.com/rs/zerolog"

	"peopleapi/internal/model"
)

// CustomerTable maps model.Customer onto the customers table.
var CustomerTable = Table[*model.Customer]{
	Name:    "customers",
	Columns: []string{"first_name", "last_name"},
	New:     func() *model.Customer { return &model.Customer{} },
	Values: func(c *model.Customer) []any {
		return []any{c.FirstName, c.LastName}
	},
	Targets: func(c *model.Customer) []any {
		return []any{&c.FirstName, &c.LastName}
	},
}

// NewCustomerRepository creates the customers repository.
func NewCustomerRepository(db *sql.DB, log zerolog.Logger) *Repository[*model.Customer] {
	return NewRepository(db, CustomerTable, log)
}
