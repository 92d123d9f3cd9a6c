package mocks

import (
	"fmt"
	"sort"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/core/ports"
	"github.com/olusolaa/webstack/internal/errors"
)

// PlatformProvider serves a fixed set of handlers.
type PlatformProvider struct {
	HandlersByKind map[domain.ResourceKind]ports.ResourceHandler
}

func NewPlatformProvider(handlers ...*ResourceHandler) *PlatformProvider {
	p := &PlatformProvider{HandlersByKind: make(map[domain.ResourceKind]ports.ResourceHandler)}
	for _, h := range handlers {
		p.HandlersByKind[h.Kind()] = h
	}
	return p
}

func (p *PlatformProvider) Type() string { return "mock" }

func (p *PlatformProvider) Handler(kind domain.ResourceKind) (ports.ResourceHandler, error) {
	h, ok := p.HandlersByKind[kind]
	if !ok {
		return nil, errors.New(errors.CodeNotImplemented, fmt.Sprintf("no handler for %s", kind))
	}
	return h, nil
}

func (p *PlatformProvider) Handlers() []ports.ResourceHandler {
	out := make([]ports.ResourceHandler, 0, len(p.HandlersByKind))
	for _, h := range p.HandlersByKind {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind() < out[j].Kind() })
	return out
}
