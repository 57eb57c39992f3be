package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockPrompter struct {
	mock.Mock
}

func (m *MockPrompter) Ask(ctx context.Context, text string) (string, bool) {
	args := m.Called(ctx, text)
	return args.String(0), args.Bool(1)
}
