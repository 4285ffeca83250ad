package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"peopleapi/internal/model"
	"peopleapi/internal/repository"
	"peopleapi/internal/service"
)

type MockDataService[T model.Model] struct {
	mock.Mock
}

var _ service.CustomerService = (*MockDataService[*model.Customer])(nil)

func entity[T model.Model](args mock.Arguments) T {
	var zero T
	if v := args.Get(0); v != nil {
		return v.(T)
	}
	return zero
}

func (m *MockDataService[T]) Add(ctx context.Context, e T) (T, error) {
	args := m.Called(ctx, e)
	return entity[T](args), args.Error(1)
}

func (m *MockDataService[T]) Update(ctx context.Context, e T) (T, error) {
	args := m.Called(ctx, e)
	return entity[T](args), args.Error(1)
}

func (m *MockDataService[T]) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataService[T]) GetByID(ctx context.Context, id int64) (T, error) {
	args := m.Called(ctx, id)
	return entity[T](args), args.Error(1)
}

func (m *MockDataService[T]) GetAll(ctx context.Context) repository.Query[T] {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(repository.Query[T])
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Export(ctx context.Context) (*service.ExportResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}
