package mocks

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// IdentityProvider is a mock type for the IdentityProvider type
type IdentityProvider struct {
	mock.Mock
}

func (m *IdentityProvider) CallerIdentity(ctx context.Context) (ports.Identity, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(ports.Identity), ret.Error(1)
}
