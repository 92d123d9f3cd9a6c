package ports

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/domain"
)

// ResourceHandler manages one resource kind on the platform.
//
//go:generate mockery --name ResourceHandler --output ./mocks --outpkg mocks --case underscore
type ResourceHandler interface {
	Kind() domain.ResourceKind
	// Discover looks for an object created for spec when no id is known.
	// It returns nil, nil when nothing matches.
	Discover(ctx context.Context, spec domain.ResourceSpec) (*domain.LiveResource, error)
	// Read returns an error with code RESOURCE_NOT_FOUND when id is gone.
	Read(ctx context.Context, id string) (*domain.LiveResource, error)
	Create(ctx context.Context, spec domain.ResourceSpec) (*domain.LiveResource, error)
	Update(ctx context.Context, id string, spec domain.ResourceSpec, diffs []domain.AttributeDiff) (*domain.LiveResource, error)
	Delete(ctx context.Context, id string) error
}

type PlatformProvider interface {
	Type() string
	Handler(kind domain.ResourceKind) (ResourceHandler, error)
	Handlers() []ResourceHandler
}

type Identity struct {
	Account string `json:"account"`
	ARN     string `json:"arn"`
	UserID  string `json:"user_id"`
	Region  string `json:"region"`
}

//go:generate mockery --name IdentityProvider --output ./mocks --outpkg mocks --case underscore
type IdentityProvider interface {
	CallerIdentity(ctx context.Context) (Identity, error)
}

//go:generate mockery --name StateStore --output ./mocks --outpkg mocks --case underscore
type StateStore interface {
	Location() string
	// Load returns a fresh state when nothing has been saved yet.
	Load(ctx context.Context) (*domain.State, error)
	Save(ctx context.Context, state *domain.State) error
}

type StateImporter interface {
	Import(ctx context.Context, path string) ([]domain.StateEntry, error)
}
