package mocks

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// StateImporter is a mock type for the StateImporter type
type StateImporter struct {
	mock.Mock
}

func (m *StateImporter) Import(ctx context.Context, path string) ([]domain.StateEntry, error) {
	ret := m.Called(ctx, path)
	var entries []domain.StateEntry
	if v := ret.Get(0); v != nil {
		entries = v.([]domain.StateEntry)
	}
	return entries, ret.Error(1)
}
