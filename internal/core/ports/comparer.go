package ports

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/domain"
)

// ResourceComparer reports how a live object differs from its desired spec.
// replace is true when at least one difference cannot be updated in place.
type ResourceComparer interface {
	Kind() domain.ResourceKind
	Compare(ctx context.Context, desired domain.ResourceSpec, live *domain.LiveResource) (diffs []domain.AttributeDiff, replace bool, err error)
}
