package mocks

import (
	"context"
	"iter"

	"github.com/stretchr/testify/mock"
	"peopleapi/internal/model"
	"peopleapi/internal/repository"
)

type MockRepository[T model.Model] struct {
	mock.Mock
}

var _ repository.Repository[*model.Customer] = (*MockRepository[*model.Customer])(nil)

func entity[T model.Model](args mock.Arguments) T {
	var zero T
	if v := args.Get(0); v != nil {
		return v.(T)
	}
	return zero
}

func (m *MockRepository[T]) GetByID(ctx context.Context, id int64) (T, error) {
	args := m.Called(ctx, id)
	return entity[T](args), args.Error(1)
}

func (m *MockRepository[T]) GetAll() repository.Query[T] {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(repository.Query[T])
}

func (m *MockRepository[T]) Add(ctx context.Context, e T) (T, error) {
	args := m.Called(ctx, e)
	return entity[T](args), args.Error(1)
}

func (m *MockRepository[T]) Update(ctx context.Context, e T) (T, error) {
	args := m.Called(ctx, e)
	return entity[T](args), args.Error(1)
}

func (m *MockRepository[T]) Delete(ctx context.Context, e T) (bool, error) {
	args := m.Called(ctx, e)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository[T]) DeleteWhere(ctx context.Context, f repository.Filter) (bool, error) {
	args := m.Called(ctx, f)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository[T]) DeleteByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// StaticQuery is a Query over a fixed slice, or one that fails every terminal call with Err.
type StaticQuery[T model.Model] struct {
	Items []T
	Err   error
}

func (q StaticQuery[T]) Where(repository.Filter) repository.Query[T] { return q }
func (q StaticQuery[T]) OrderBy(string, bool) repository.Query[T]    { return q }
func (q StaticQuery[T]) Limit(int) repository.Query[T]               { return q }
func (q StaticQuery[T]) Offset(int) repository.Query[T]              { return q }

func (q StaticQuery[T]) All(context.Context) ([]T, error) {
	if q.Err != nil {
		return nil, q.Err
	}
	return append(make([]T, 0, len(q.Items)), q.Items...), nil
}

func (q StaticQuery[T]) Iter(context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		if q.Err != nil {
			var zero T
			yield(zero, q.Err)
			return
		}
		for _, e := range q.Items {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (q StaticQuery[T]) Count(context.Context) (int, error) {
	if q.Err != nil {
		return 0, q.Err
	}
	return len(q.Items), nil
}
