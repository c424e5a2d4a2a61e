package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docscan/internal/model"
)

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) InsertOrUpdate(ctx context.Context, doc model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentStore) ObserveAll(ctx context.Context) (<-chan []model.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan []model.Document), args.Error(1)
}
