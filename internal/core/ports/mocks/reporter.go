package mocks

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// Reporter is a mock type for the Reporter type
type Reporter struct {
	mock.Mock
}

func (m *Reporter) ReportPlan(ctx context.Context, changes domain.ChangeSet) error {
	return m.Called(ctx, changes).Error(0)
}

func (m *Reporter) ReportApply(ctx context.Context, result domain.ApplyResult) error {
	return m.Called(ctx, result).Error(0)
}

func (m *Reporter) ReportOutputs(ctx context.Context, outputs map[string]string) error {
	return m.Called(ctx, outputs).Error(0)
}
