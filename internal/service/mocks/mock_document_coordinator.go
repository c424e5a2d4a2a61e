package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"docscan/internal/model"
	"docscan/internal/scanner"
)

type MockDocumentCoordinator struct {
	mock.Mock
}

func (m *MockDocumentCoordinator) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDocumentCoordinator) RecordScan(loc model.Location) {
	m.Called(loc)
}

func (m *MockDocumentCoordinator) PendingScan() (model.Location, bool) {
	args := m.Called()
	return args.Get(0).(model.Location), args.Bool(1)
}

func (m *MockDocumentCoordinator) Documents() []model.Document {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Document)
}

func (m *MockDocumentCoordinator) Get(id int64) (*model.Document, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentCoordinator) Observe(ctx context.Context) (<-chan []model.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan []model.Document), args.Error(1)
}

func (m *MockDocumentCoordinator) Scan(ctx context.Context) (*scanner.Result, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scanner.Result), args.Error(1)
}

func (m *MockDocumentCoordinator) SaveDocument(ctx context.Context, destination model.Location) (*model.Document, error) {
	args := m.Called(ctx, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentCoordinator) SaveToPicked(ctx context.Context) (*model.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentCoordinator) Open(ctx context.Context, id int64) (io.ReadCloser, *model.Document, error) {
	args := m.Called(ctx, id)
	var r io.ReadCloser
	if v := args.Get(0); v != nil {
		r = v.(io.ReadCloser)
	}
	var doc *model.Document
	if v := args.Get(1); v != nil {
		doc = v.(*model.Document)
	}
	return r, doc, args.Error(2)
}

func (m *MockDocumentCoordinator) Available(ctx context.Context, doc model.Document) bool {
	args := m.Called(ctx, doc)
	return args.Bool(0)
}
