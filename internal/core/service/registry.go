package service

import (
	"fmt"
	"sort"
	"sync"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/core/ports"
	"github.com/olusolaa/webstack/internal/errors"
)

type ComponentRegistry struct {
	mu                sync.RWMutex
	resourceComparers map[domain.ResourceKind]ports.ResourceComparer
}

func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		resourceComparers: make(map[domain.ResourceKind]ports.ResourceComparer),
	}
}

func (r *ComponentRegistry) RegisterResourceComparer(comparer ports.ResourceComparer) error {
	if comparer == nil {
		return errors.New(errors.CodeInternal, "attempted to register nil resource comparer")
	}
	kind := comparer.Kind()
	if kind == "" {
		return errors.New(errors.CodeInternal, "resource comparer kind cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.resourceComparers[kind]; exists {
		return errors.New(errors.CodeInternal, fmt.Sprintf("resource comparer for kind '%s' already registered", kind))
	}
	r.resourceComparers[kind] = comparer
	return nil
}

func (r *ComponentRegistry) GetResourceComparer(kind domain.ResourceKind) (ports.ResourceComparer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comparer, exists := r.resourceComparers[kind]
	if !exists {
		return nil, errors.New(errors.CodeNotImplemented, fmt.Sprintf("resource comparer for kind '%s' not implemented", kind))
	}
	return comparer, nil
}

// Kinds lists the kinds that have a comparer, sorted.
func (r *ComponentRegistry) Kinds() []domain.ResourceKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]domain.ResourceKind, 0, len(r.resourceComparers))
	for k := range r.resourceComparers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
