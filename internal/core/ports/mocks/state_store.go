package mocks

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/domain"
)

// StateStore is an in-memory StateStore whose Save calls are recorded.
type StateStore struct {
	State *domain.State
	Saves int
}

func (m *StateStore) Location() string { return "memory" }

func (m *StateStore) Load(ctx context.Context) (*domain.State, error) {
	if m.State == nil {
		m.State = domain.NewState("test-lineage")
	}
	return m.State, nil
}

func (m *StateStore) Save(ctx context.Context, state *domain.State) error {
	m.Saves++
	m.State = state
	return nil
}
