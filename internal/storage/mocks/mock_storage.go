package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"docscan/internal/model"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Open(ctx context.Context, loc model.Location) (io.ReadCloser, error) {
	args := m.Called(ctx, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) Create(ctx context.Context, loc model.Location) (io.WriteCloser, error) {
	args := m.Called(ctx, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockStorage) Exists(ctx context.Context, loc model.Location) (bool, error) {
	args := m.Called(ctx, loc)
	return args.Bool(0), args.Error(1)
}
