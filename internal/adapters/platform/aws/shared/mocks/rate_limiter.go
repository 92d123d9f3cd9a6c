package mocks

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// RateLimiter is a mock type for the RateLimiter type
type RateLimiter struct {
	mock.Mock
}

func (m *RateLimiter) Wait(ctx context.Context, logger ports.Logger) error {
	ret := m.Called(ctx, logger)
	if fn, ok := ret.Get(0).(func(context.Context, ports.Logger) error); ok {
		return fn(ctx, logger)
	}
	return ret.Error(0)
}
