// Package storagemock provides testify mocks for the storage interfaces.
package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mcsr-tools/splitwatch/internal/model"
)

// MockJournal is a mock implementation of storage.Journal.
type MockJournal struct {
	mock.Mock
}

// RecordTransition mocks storage.Journal.
func (m *MockJournal) RecordTransition(ctx context.Context, t model.Transition) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

// ListTransitions mocks storage.Journal.
func (m *MockJournal) ListTransitions(ctx context.Context, limit int) ([]model.Transition, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transition), args.Error(1)
}
