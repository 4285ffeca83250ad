package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peopleapi/internal/repository"
)

func TestRebind(t *testing.T) {
	assert.Equal(t, "a = $1 AND b = $2", rebind("a = ? AND b = ?"))
	assert.Equal(t, "no params", rebind("no params"))
}

func TestQuery_IsLazyAndRestartable(t *testing.T) {
	repo, mock, now := newCustomerRepo(t)
	ctx := context.Background()

	q := repo.GetAll().
		Where(repository.Where("last_name = ?", "Smith")).
		OrderBy("id", false).
		Limit(10).
		Offset(5)

	// Nothing has been executed yet.
	assert.NoError(t, mock.ExpectationsWereMet())

	stmt := regexp.QuoteMeta("SELECT id, created, last_updated, first_name, last_name FROM customers WHERE (last_name = $1) ORDER BY id LIMIT $2 OFFSET $3")
	for range 2 {
		mock.ExpectQuery(stmt).
			WithArgs("Smith", 10, 5).
			WillReturnRows(sqlmock.NewRows(customerColumns).
				AddRow(1, now, now, "John", "Smith").
				AddRow(2, now, now, "Jane", "Smith"))
	}

	first, err := q.All(ctx)
	require.NoError(t, err)
	second, err := q.All(ctx)
	require.NoError(t, err)

	assert.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_CompositionDoesNotMutate(t *testing.T) {
	repo, mock, _ := newCustomerRepo(t)
	ctx := context.Background()

	base := repo.GetAll()
	_ = base.Where(repository.Where("first_name = ?", "John")).OrderBy("last_name", true)

	mock.ExpectQuery("^" + regexp.QuoteMeta("SELECT id, created, last_updated, first_name, last_name FROM customers") + "$").
		WillReturnRows(sqlmock.NewRows(customerColumns))

	items, err := base.All(ctx)

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_Iter_StopsEarly(t *testing.T) {
	repo, mock, now := newCustomerRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM customers").
		WillReturnRows(sqlmock.NewRows(customerColumns).
			AddRow(1, now, now, "A", "A").
			AddRow(2, now, now, "B", "B").
			AddRow(3, now, now, "C", "C"))

	var seen []int64
	for c, err := range repo.GetAll().Iter(context.Background()) {
		require.NoError(t, err)
		seen = append(seen, c.ID)
		if len(seen) == 2 {
			break
		}
	}

	assert.Equal(t, []int64{1, 2}, seen)
}

func TestQuery_UnknownColumn(t *testing.T) {
	repo, mock, _ := newCustomerRepo(t)

	_, err := repo.GetAll().OrderBy("password; DROP TABLE customers", false).All(context.Background())

	assert.True(t, repository.IsInvalidArgument(err))
	assert.ErrorIs(t, err, repository.ErrUnknownColumn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_StoreFailure(t *testing.T) {
	repo, mock, _ := newCustomerRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM customers").
		WillReturnError(errors.New("relation does not exist"))

	items, err := repo.GetAll().All(context.Background())

	assert.Nil(t, items)
	assert.Equal(t, repository.KindStoreFailure, repository.KindOf(err))
}

func TestQuery_Count(t *testing.T) {
	repo, mock, _ := newCustomerRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM customers WHERE (first_name = $1)")).
		WithArgs("John").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.GetAll().
		Where(repository.Where("first_name = ?", "John")).
		Limit(1).
		Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
