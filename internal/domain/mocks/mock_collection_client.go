package mocks

import (
	"context"

	"github.com/mmcdole/roster/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockCollectionClient struct {
	mock.Mock
}

func (m *MockCollectionClient) Get(ctx context.Context, q domain.Query) ([]byte, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCollectionClient) Create(ctx context.Context, collection string, fields domain.Fields) (*domain.Item, error) {
	args := m.Called(ctx, collection, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockCollectionClient) Update(ctx context.Context, collection string, id int, fields domain.Fields) error {
	args := m.Called(ctx, collection, id, fields)
	return args.Error(0)
}

func (m *MockCollectionClient) Delete(ctx context.Context, collection string, id int) error {
	args := m.Called(ctx, collection, id)
	return args.Error(0)
}
