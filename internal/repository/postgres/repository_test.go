package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peopleapi/internal/model"
	"peopleapi/internal/repository"
)

var customerColumns = []string{"id", "created", "last_updated", "first_name", "last_name"}

func newCustomerRepo(t *testing.T) (*Repository[*model.Customer], sqlmock.Sqlmock, time.Time) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Date(2024, 3, 1, 10, 30, 0, 123456000, time.UTC)
	repo := NewCustomerRepository(db, zerolog.Nop())
	repo.now = func() time.Time { return now }
	return repo, mock, now
}

func TestRepository_Add(t *testing.T) {
	repo, mock, now := newCustomerRepo(t)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		c := &model.Customer{FirstName: "John", LastName: "McArthur"}

		mock.ExpectQuery(regexp.QuoteMeta(
			"INSERT INTO customers (created, last_updated, first_name, last_name) VALUES ($1, $2, $3, $4) RETURNING id, created, last_updated, first_name, last_name",
		)).
			WithArgs(now, now, "John", "McArthur").
			WillReturnRows(sqlmock.NewRows(customerColumns).AddRow(1, now, now, "John", "McArthur"))

		out, err := repo.Add(ctx, c)

		require.NoError(t, err)
		assert.NotZero(t, out.ID)
		assert.Equal(t, now, out.Created)
		assert.Equal(t, out.Created, out.LastUpdated)
		assert.Equal(t, now, c.Created, "input entity is stamped too")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil entity", func(t *testing.T) {
		out, err := repo.Add(ctx, nil)

		assert.Nil(t, out)
		assert.True(t, repository.IsInvalidArgument(err))
		assert.ErrorIs(t, err, repository.ErrNilEntity)
	})

	t.Run("store failure", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO customers").
			WillReturnError(errors.New("unique violation"))

		out, err := repo.Add(ctx, &model.Customer{FirstName: "a", LastName: "b"})

		assert.Nil(t, out)
		assert.Equal(t, repository.KindStoreFailure, repository.KindOf(err))
		assert.Contains(t, err.Error(), "unique violation")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock, now := newCustomerRepo(t)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, created, last_updated, first_name, last_name FROM customers WHERE id = $1")).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(customerColumns).AddRow(7, now, now, "John", "Smith"))

		c, err := repo.GetByID(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, int64(7), c.ID)
		assert.Equal(t, "Smith", c.LastName)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM customers WHERE id = ?").
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		c, err := repo.GetByID(ctx, 99)

		assert.Nil(t, c)
		assert.True(t, repository.IsNotFound(err))
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM customers WHERE id = ?").
			WithArgs(int64(1)).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.GetByID(ctx, 1)

		assert.Equal(t, repository.KindStoreFailure, repository.KindOf(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update(t *testing.T) {
	repo, mock, now := newCustomerRepo(t)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		created := now.Add(-time.Hour)
		c := &model.Customer{
			Base:      model.Base{ID: 3, Created: created, LastUpdated: created},
			FirstName: "Jane",
			LastName:  "Doe",
		}

		mock.ExpectQuery(regexp.QuoteMeta(
			"UPDATE customers SET last_updated = GREATEST($1, last_updated + INTERVAL '1 microsecond'), first_name = $2, last_name = $3 WHERE id = $4 RETURNING id, created, last_updated, first_name, last_name",
		)).
			WithArgs(now, "Jane", "Doe", int64(3)).
			WillReturnRows(sqlmock.NewRows(customerColumns).AddRow(3, created, now, "Jane", "Doe"))

		out, err := repo.Update(ctx, c)

		require.NoError(t, err)
		assert.Equal(t, c.ID, out.ID)
		assert.Equal(t, created, out.Created)
		assert.True(t, out.LastUpdated.After(c.LastUpdated))
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("UPDATE customers SET").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Update(ctx, &model.Customer{Base: model.Base{ID: 42}, FirstName: "a", LastName: "b"})

		assert.True(t, repository.IsNotFound(err))
	})

	t.Run("nil entity", func(t *testing.T) {
		_, err := repo.Update(ctx, nil)

		assert.True(t, repository.IsInvalidArgument(err))
	})

	t.Run("store failure", func(t *testing.T) {
		mock.ExpectQuery("UPDATE customers SET").
			WillReturnError(errors.New("check constraint"))

		_, err := repo.Update(ctx, &model.Customer{Base: model.Base{ID: 3}})

		assert.Equal(t, repository.KindStoreFailure, repository.KindOf(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	repo, mock, _ := newCustomerRepo(t)
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM customers WHERE id = $1")).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.Delete(ctx, &model.Customer{Base: model.Base{ID: 5}})

		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("no row", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM customers WHERE id = $1")).
			WithArgs(int64(6)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.Delete(ctx, &model.Customer{Base: model.Base{ID: 6}})

		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM customers").
			WillReturnError(errors.New("foreign key violation"))

		ok, err := repo.Delete(ctx, &model.Customer{Base: model.Base{ID: 5}})

		assert.False(t, ok)
		assert.Equal(t, repository.KindStoreFailure, repository.KindOf(err))
	})

	t.Run("nil entity", func(t *testing.T) {
		_, err := repo.Delete(ctx, nil)

		assert.True(t, repository.IsInvalidArgument(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteWhere(t *testing.T) {
	repo, mock, _ := newCustomerRepo(t)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM customers WHERE last_name = $1 AND first_name <> $2")).
			WithArgs("Smith", "John").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		ok, err := repo.DeleteWhere(ctx, repository.Where("last_name = ? AND first_name <> ?", "Smith", "John"))

		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("nothing matched", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM customers WHERE").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		ok, err := repo.DeleteWhere(ctx, repository.Where("last_name = ?", "Nobody"))

		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("batch rejected", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM customers WHERE").
			WillReturnError(errors.New("serialization failure"))
		mock.ExpectRollback()

		ok, err := repo.DeleteWhere(ctx, repository.Where("id > ?", 10))

		assert.False(t, ok)
		assert.Equal(t, repository.KindStoreFailure, repository.KindOf(err))
	})

	t.Run("empty filter", func(t *testing.T) {
		_, err := repo.DeleteWhere(ctx, repository.Filter{})

		assert.True(t, repository.IsInvalidArgument(err))
		assert.ErrorIs(t, err, repository.ErrEmptyFilter)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteByID(t *testing.T) {
	repo, mock, now := newCustomerRepo(t)
	ctx := context.Background()

	t.Run("absent", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM customers WHERE id = ?").
			WithArgs(int64(8)).
			WillReturnError(sql.ErrNoRows)

		ok, err := repo.DeleteByID(ctx, 8)

		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("present", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM customers WHERE id = ?").
			WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows(customerColumns).AddRow(9, now, now, "A", "B"))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM customers WHERE id = $1")).
			WithArgs(int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.DeleteByID(ctx, 9)

		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("lookup failure", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM customers WHERE id = ?").
			WithArgs(int64(10)).
			WillReturnError(errors.New("timeout"))

		ok, err := repo.DeleteByID(ctx, 10)

		assert.False(t, ok)
		assert.Equal(t, repository.KindStoreFailure, repository.KindOf(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepository_UsesPeopleTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPersonRepository(db, zerolog.Nop())
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, created, last_updated, first_name, last_name FROM people WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(customerColumns).AddRow(1, now, now, "Ada", "Lovelace"))

	p, err := repo.GetByID(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "Ada", p.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
