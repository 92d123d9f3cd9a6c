package mocks

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// Engine is a mock type for the Engine type
type Engine struct {
	mock.Mock
}

func (m *Engine) Plan(ctx context.Context, plan domain.Plan) (domain.ChangeSet, error) {
	ret := m.Called(ctx, plan)
	return ret.Get(0).(domain.ChangeSet), ret.Error(1)
}

func (m *Engine) PlanDestroy(ctx context.Context) (domain.ChangeSet, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(domain.ChangeSet), ret.Error(1)
}

func (m *Engine) Apply(ctx context.Context, plan domain.Plan, changes domain.ChangeSet) (domain.ApplyResult, error) {
	ret := m.Called(ctx, plan, changes)
	return ret.Get(0).(domain.ApplyResult), ret.Error(1)
}

func (m *Engine) Outputs(ctx context.Context) (map[string]string, error) {
	ret := m.Called(ctx)
	var out map[string]string
	if v := ret.Get(0); v != nil {
		out = v.(map[string]string)
	}
	return out, ret.Error(1)
}
