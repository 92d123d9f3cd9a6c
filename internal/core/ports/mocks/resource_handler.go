package mocks

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// ResourceHandler is a mock type for the ResourceHandler type
type ResourceHandler struct {
	mock.Mock
	HandlerKind domain.ResourceKind
}

func (m *ResourceHandler) Kind() domain.ResourceKind { return m.HandlerKind }

func (m *ResourceHandler) Discover(ctx context.Context, spec domain.ResourceSpec) (*domain.LiveResource, error) {
	ret := m.Called(ctx, spec)
	return live(ret.Get(0)), ret.Error(1)
}

func (m *ResourceHandler) Read(ctx context.Context, id string) (*domain.LiveResource, error) {
	ret := m.Called(ctx, id)
	return live(ret.Get(0)), ret.Error(1)
}

func (m *ResourceHandler) Create(ctx context.Context, spec domain.ResourceSpec) (*domain.LiveResource, error) {
	ret := m.Called(ctx, spec)
	return live(ret.Get(0)), ret.Error(1)
}

func (m *ResourceHandler) Update(ctx context.Context, id string, spec domain.ResourceSpec, diffs []domain.AttributeDiff) (*domain.LiveResource, error) {
	ret := m.Called(ctx, id, spec, diffs)
	return live(ret.Get(0)), ret.Error(1)
}

func (m *ResourceHandler) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func live(v any) *domain.LiveResource {
	if v == nil {
		return nil
	}
	return v.(*domain.LiveResource)
}
