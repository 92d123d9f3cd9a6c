package mocks

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// ResourceComparer is a mock type for the ResourceComparer type
type ResourceComparer struct {
	mock.Mock
	ComparerKind domain.ResourceKind
}

func (m *ResourceComparer) Kind() domain.ResourceKind { return m.ComparerKind }

func (m *ResourceComparer) Compare(ctx context.Context, desired domain.ResourceSpec, live *domain.LiveResource) ([]domain.AttributeDiff, bool, error) {
	ret := m.Called(ctx, desired, live)
	var diffs []domain.AttributeDiff
	if v := ret.Get(0); v != nil {
		diffs = v.([]domain.AttributeDiff)
	}
	return diffs, ret.Bool(1), ret.Error(2)
}
