package ports

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/domain"
)

type Reporter interface {
	ReportPlan(ctx context.Context, changes domain.ChangeSet) error
	ReportApply(ctx context.Context, result domain.ApplyResult) error
	ReportOutputs(ctx context.Context, outputs map[string]string) error
}
