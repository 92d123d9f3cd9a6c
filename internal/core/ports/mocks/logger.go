package mocks

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// Logger is a mock type for the Logger type
type Logger struct {
	mock.Mock
}

func (m *Logger) Debugf(ctx context.Context, format string, args ...any) {
	m.Called(ctx, format, args)
}

func (m *Logger) Infof(ctx context.Context, format string, args ...any) {
	m.Called(ctx, format, args)
}

func (m *Logger) Warnf(ctx context.Context, format string, args ...any) {
	m.Called(ctx, format, args)
}

func (m *Logger) Errorf(ctx context.Context, err error, format string, args ...any) {
	m.Called(ctx, err, format, args)
}

func (m *Logger) WithFields(fields map[string]any) ports.Logger {
	ret := m.Called(fields)
	if l, ok := ret.Get(0).(ports.Logger); ok {
		return l
	}
	return m
}

// NewQuietLogger returns a Logger that accepts every call.
func NewQuietLogger() *Logger {
	l := new(Logger)
	l.On("Debugf", mock.Anything, mock.Anything, mock.Anything).Maybe().Return()
	l.On("Infof", mock.Anything, mock.Anything, mock.Anything).Maybe().Return()
	l.On("Warnf", mock.Anything, mock.Anything, mock.Anything).Maybe().Return()
	l.On("Errorf", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe().Return()
	l.On("WithFields", mock.Anything).Maybe().Return(nil)
	return l
}
