package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"peopleapi/internal/model"
	"peopleapi/internal/repository"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// Repository is a PostgreSQL implementation of repository.Repository for any entity
// type described by a Table. It uses database/sql with parameterized queries and
// contains no business logic.
type Repository[T model.Model] struct {
	db    *sql.DB
	table Table[T]
	log   zerolog.Logger
	now   func() time.Time
}

// NewRepository creates a repository for the given table.
func NewRepository[T model.Model](db *sql.DB, table Table[T], log zerolog.Logger) *Repository[T] {
	return &Repository[T]{
		db:    db,
		table: table,
		log:   log.With().Str("component", "repository").Str("table", table.Name).Logger(),
		now:   time.Now,
	}
}

var (
	_ repository.Repository[*model.Customer] = (*Repository[*model.Customer])(nil)
	_ repository.Repository[*model.Person]   = (*Repository[*model.Person])(nil)
)

// timestamp returns the current time at the store's resolution.
func (r *Repository[T]) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

func (r *Repository[T]) scan(row rowScanner) (T, error) {
	e := r.table.New()
	if err := row.Scan(r.table.targets(e)...); err != nil {
		var zero T
		return zero, err
	}
	return e, nil
}

func (r *Repository[T]) storeFailure(op string, err error) error {
	return repository.NewError(repository.KindStoreFailure, op, err)
}

func (r *Repository[T]) nilEntity(op string) error {
	r.log.Error().Str("op", op).Msg("tried to use a nil entity")
	return repository.NewError(repository.KindInvalidArgument, op, repository.ErrNilEntity)
}

// GetByID fetches a single entity by primary key.
func (r *Repository[T]) GetByID(ctx context.Context, id int64) (T, error) {
	const op = "get_by_id"
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", r.table.selectList(), r.table.Name)

	e, err := r.scan(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Debug().Str("op", op).Int64("id", id).Msg("entity not found")
			return zero, repository.NewError(repository.KindNotFound, op, repository.ErrNotFound)
		}
		r.log.Error().Err(err).Str("op", op).Int64("id", id).Msg("failed to retrieve entity")
		return zero, r.storeFailure(op, err)
	}

	r.log.Debug().Str("op", op).Int64("id", id).Interface("entity", e).Msg("entity retrieved")
	return e, nil
}

// GetAll returns a lazy query over the whole table.
func (r *Repository[T]) GetAll() repository.Query[T] {
	return query[T]{repo: r}
}

// Add inserts a new row and returns the stored record, including its generated id.
func (r *Repository[T]) Add(ctx context.Context, entity T) (T, error) {
	const op = "add"
	var zero T
	if entity == zero {
		return zero, r.nilEntity(op)
	}

	now := r.timestamp()
	meta := entity.Meta()
	meta.Created = now
	meta.LastUpdated = now

	cols := append([]string{"created", "last_updated"}, r.table.Columns...)
	args := append([]any{now, now}, r.table.Values(entity)...)
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		r.table.Name,
		strings.Join(cols, ", "),
		placeholders(1, len(cols)),
		r.table.selectList(),
	)

	out, err := r.scan(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		r.log.Error().Err(err).Str("op", op).Interface("entity", entity).Msg("failed to add entity")
		return zero, r.storeFailure(op, err)
	}

	r.log.Info().Str("op", op).Int64("id", out.Meta().ID).Msg("entity added")
	return out, nil
}

// Update overwrites all mutable columns of the row identified by entity's id.
// last_updated always moves forward, even when the clock has not.
func (r *Repository[T]) Update(ctx context.Context, entity T) (T, error) {
	const op = "update"
	var zero T
	if entity == zero {
		return zero, r.nilEntity(op)
	}

	sets := []string{"last_updated = GREATEST($1, last_updated + INTERVAL '1 microsecond')"}
	for i, c := range r.table.Columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", c, i+2))
	}
	args := append([]any{r.timestamp()}, r.table.Values(entity)...)
	args = append(args, entity.Meta().ID)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		r.table.Name,
		strings.Join(sets, ", "),
		len(args),
		r.table.selectList(),
	)

	out, err := r.scan(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warn().Str("op", op).Int64("id", entity.Meta().ID).Msg("entity to update not found")
			return zero, repository.NewError(repository.KindNotFound, op, repository.ErrNotFound)
		}
		r.log.Error().Err(err).Str("op", op).Interface("entity", entity).Msg("failed to update entity")
		return zero, r.storeFailure(op, err)
	}

	r.log.Info().Str("op", op).Interface("entity", out).Msg("entity updated")
	return out, nil
}

// Delete removes the row backing entity.
func (r *Repository[T]) Delete(ctx context.Context, entity T) (bool, error) {
	const op = "delete"
	var zero T
	if entity == zero {
		return false, r.nilEntity(op)
	}
	return r.deleteByID(ctx, op, entity.Meta().ID)
}

// DeleteWhere removes every row matching f inside one transaction.
// An empty filter is rejected rather than truncating the table.
func (r *Repository[T]) DeleteWhere(ctx context.Context, f repository.Filter) (bool, error) {
	const op = "delete_where"
	if f.IsZero() {
		r.log.Error().Str("op", op).Msg("refusing to delete with an empty filter")
		return false, repository.NewError(repository.KindInvalidArgument, op, repository.ErrEmptyFilter)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Error().Err(err).Str("op", op).Msg("failed to begin transaction")
		return false, r.storeFailure(op, err)
	}

	q := rebind(fmt.Sprintf("DELETE FROM %s WHERE %s", r.table.Name, f.Clause))
	res, err := tx.ExecContext(ctx, q, f.Args...)
	if err != nil {
		_ = tx.Rollback()
		r.log.Error().Err(err).Str("op", op).Str("filter", f.Clause).Msg("failed to delete entities")
		return false, r.storeFailure(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, r.storeFailure(op, err)
	}
	if err := tx.Commit(); err != nil {
		r.log.Error().Err(err).Str("op", op).Str("filter", f.Clause).Msg("failed to commit delete")
		return false, r.storeFailure(op, err)
	}

	r.log.Info().Str("op", op).Str("filter", f.Clause).Int64("deleted", n).Msg("deleting multiple entities successful")
	return n > 0, nil
}

// DeleteByID looks the entity up and removes it. It returns false if the id is absent.
func (r *Repository[T]) DeleteByID(ctx context.Context, id int64) (bool, error) {
	const op = "delete_by_id"
	e, err := r.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	r.log.Info().Str("op", op).Interface("entity", e).Msg("deleting entity")
	return r.deleteByID(ctx, op, id)
}

func (r *Repository[T]) deleteByID(ctx context.Context, op string, id int64) (bool, error) {
	q := fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.table.Name)
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		r.log.Error().Err(err).Str("op", op).Int64("id", id).Msg("failed to delete entity")
		return false, r.storeFailure(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, r.storeFailure(op, err)
	}
	return n > 0, nil
}
