package mocks

import (
	"context"

	"github.com/mmcdole/roster/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Report(ctx context.Context, op string, err error, sev domain.Severity) {
	m.Called(ctx, op, err, sev)
}
