package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"peopleapi/internal/storage"
)

// MockStorage is a testify mock of storage.Storage. Put may be stubbed with a
// func(ctx, key, r, opt) storage.ObjectInfo to inspect the uploaded body.
type MockStorage struct {
	mock.Mock
}

var _ storage.Storage = (*MockStorage)(nil)

type putFunc = func(context.Context, string, io.Reader, storage.PutObjectOptions) storage.ObjectInfo

func (m *MockStorage) Put(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	args := m.Called(ctx, key, r, opt)
	switch v := args.Get(0).(type) {
	case putFunc:
		return v(ctx, key, r, opt), args.Error(1)
	case storage.ObjectInfo:
		return v, args.Error(1)
	default:
		return storage.ObjectInfo{}, args.Error(1)
	}
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}
