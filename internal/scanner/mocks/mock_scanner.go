package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docscan/internal/scanner"
)

type MockScanner struct {
	mock.Mock
}

func (m *MockScanner) Scan(ctx context.Context, opts scanner.Options) (*scanner.Result, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scanner.Result), args.Error(1)
}
