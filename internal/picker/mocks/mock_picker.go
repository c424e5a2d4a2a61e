package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docscan/internal/model"
)

type MockPicker struct {
	mock.Mock
}

func (m *MockPicker) Pick(ctx context.Context, suggestedName, mimeType string) (model.Location, error) {
	args := m.Called(ctx, suggestedName, mimeType)
	return args.Get(0).(model.Location), args.Error(1)
}
