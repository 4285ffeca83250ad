package postgres

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"

	"peopleapi/internal/model"
	"peopleapi/internal/repository"
)

type orderTerm struct {
	column string
	desc   bool
}

// query is an immutable query description; it only touches the database when
// All, Iter or Count is called, and can be run any number of times.
type query[T model.Model] struct {
	repo    *Repository[T]
	filters []repository.Filter
	order   []orderTerm
	limit   int
	offset  int
	err     error
}

func (q query[T]) Where(f repository.Filter) repository.Query[T] {
	if !f.IsZero() {
		q.filters = append(slices.Clip(q.filters), f)
	}
	return q
}

func (q query[T]) OrderBy(column string, desc bool) repository.Query[T] {
	if !q.repo.table.hasColumn(column) {
		q.err = fmt.Errorf("%w: %q", repository.ErrUnknownColumn, column)
		return q
	}
	q.order = append(slices.Clip(q.order), orderTerm{column: column, desc: desc})
	return q
}

func (q query[T]) Limit(n int) repository.Query[T] {
	q.limit = n
	return q
}

func (q query[T]) Offset(n int) repository.Query[T] {
	q.offset = n
	return q
}

// build renders the statement with '?' placeholders rebound to $n.
func (q query[T]) build(selection string, paged bool) (string, []any) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", selection, q.repo.table.Name)

	where := repository.And(q.filters...)
	args := slices.Clone(where.Args)
	if !where.IsZero() {
		b.WriteString(" WHERE ")
		b.WriteString(where.Clause)
	}

	if paged {
		if len(q.order) > 0 {
			terms := make([]string, len(q.order))
			for i, o := range q.order {
				terms[i] = o.column
				if o.desc {
					terms[i] += " DESC"
				}
			}
			b.WriteString(" ORDER BY ")
			b.WriteString(strings.Join(terms, ", "))
		}
		if q.limit > 0 {
			b.WriteString(" LIMIT ?")
			args = append(args, q.limit)
		}
		if q.offset > 0 {
			b.WriteString(" OFFSET ?")
			args = append(args, q.offset)
		}
	}

	return rebind(b.String()), args
}

func (q query[T]) Iter(ctx context.Context) iter.Seq2[T, error] {
	const op = "get_all"
	return func(yield func(T, error) bool) {
		var zero T
		if q.err != nil {
			yield(zero, repository.NewError(repository.KindInvalidArgument, op, q.err))
			return
		}

		stmt, args := q.build(q.repo.table.selectList(), true)
		rows, err := q.repo.db.QueryContext(ctx, stmt, args...)
		if err != nil {
			q.repo.log.Error().Err(err).Str("op", op).Str("query", stmt).Msg("failed to query entities")
			yield(zero, q.repo.storeFailure(op, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			e, err := q.repo.scan(rows)
			if err != nil {
				q.repo.log.Error().Err(err).Str("op", op).Msg("failed to scan entity")
				yield(zero, q.repo.storeFailure(op, err))
				return
			}
			if !yield(e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			q.repo.log.Error().Err(err).Str("op", op).Msg("failed to iterate entities")
			yield(zero, q.repo.storeFailure(op, err))
		}
	}
}

func (q query[T]) All(ctx context.Context) ([]T, error) {
	items := make([]T, 0)
	for e, err := range q.Iter(ctx) {
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, nil
}

func (q query[T]) Count(ctx context.Context) (int, error) {
	const op = "count"
	if q.err != nil {
		return 0, repository.NewError(repository.KindInvalidArgument, op, q.err)
	}

	stmt, args := q.build("COUNT(*)", false)
	var total int
	if err := q.repo.db.QueryRowContext(ctx, stmt, args...).Scan(&total); err != nil {
		q.repo.log.Error().Err(err).Str("op", op).Str("query", stmt).Msg("failed to count entities")
		return 0, q.repo.storeFailure(op, err)
	}
	return total, nil
}
