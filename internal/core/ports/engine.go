package ports

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/domain"
)

//go:generate mockery --name Engine --output ./mocks --outpkg mocks --case underscore
type Engine interface {
	Plan(ctx context.Context, plan domain.Plan) (domain.ChangeSet, error)
	PlanDestroy(ctx context.Context) (domain.ChangeSet, error)
	Apply(ctx context.Context, plan domain.Plan, changes domain.ChangeSet) (domain.ApplyResult, error)
	Outputs(ctx context.Context) (map[string]string, error)
}
