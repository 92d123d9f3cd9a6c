package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// ErrorHandler is a mock type for the ErrorHandler type
type ErrorHandler struct {
	mock.Mock
}

func (m *ErrorHandler) Handle(service string, operation string, err error, ctx context.Context) error {
	ret := m.Called(service, operation, err, ctx)
	if fn, ok := ret.Get(0).(func(string, string, error, context.Context) error); ok {
		return fn(service, operation, err, ctx)
	}
	return ret.Error(0)
}
