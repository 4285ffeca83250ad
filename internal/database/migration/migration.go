package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTables must all exist for the schema to be considered migrated.
var sentinelTables = []string{"public.customers", "public.people"}

var steps = []migrationStep{
	{
		Name: "create_table_customers",
		SQL: `CREATE TABLE IF NOT EXISTS customers (
  id           BIGSERIAL   PRIMARY KEY,
  created      TIMESTAMPTZ NOT NULL,
  last_updated TIMESTAMPTZ NOT NULL,
  first_name   TEXT        NOT NULL,
  last_name    TEXT        NOT NULL,
  CHECK (created <= last_updated)
);`,
	},
	{
		Name: "create_index_customers_last_name",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_customers_last_name ON customers (last_name);`,
	},
	{
		Name: "create_table_people",
		SQL: `CREATE TABLE IF NOT EXISTS people (
  id           BIGSERIAL   PRIMARY KEY,
  created      TIMESTAMPTZ NOT NULL,
  last_updated TIMESTAMPTZ NOT NULL,
  first_name   TEXT        NOT NULL,
  last_name    TEXT        NOT NULL,
  CHECK (created <= last_updated)
);`,
	},
	{
		Name: "create_index_people_last_name",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_people_last_name ON people (last_name);`,
	},
}

// EnsureMigrated checks if the sentinel tables exist and runs migrations if any is missing.
func EnsureMigrated(ctx context.Context, db *sql.DB, log zerolog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With().Str("component", "database").Str("db_host", dbHost).Logger()

	log.Info().Str("event", "db_migration_check").Str("status", "starting").Send()

	const query = "SELECT to_regclass($1) IS NOT NULL"
	migrated := true
	for _, table := range sentinelTables {
		var exists bool
		if err := db.QueryRowContext(ctx, query, table).Scan(&exists); err != nil {
			log.Error().
				Str("event", "db_migration_failed").
				Str("status", "error").
				Str("error_message", fmt.Sprintf("failed to check sentinel table %s: %v", table, err)).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Send()
			return fmt.Errorf("failed to check sentinel table %s: %w", table, err)
		}
		if !exists {
			migrated = false
			break
		}
	}

	if migrated {
		log.Info().
			Str("event", "db_migration_skip").
			Str("status", "success").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists, skipping migration")
		return nil
	}

	log.Info().Str("event", "db_migration_start").Str("status", "in_progress").Send()

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error().
				Str("event", "db_migration_failed").
				Str("status", "error").
				Str("migration_step", step.Name).
				Str("error_message", err.Error()).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
				Send()
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info().
			Str("event", "db_migration_step").
			Str("status", "success").
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Send()
	}

	log.Info().
		Str("event", "db_migration_success").
		Str("status", "success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Send()

	return nil
}
