package domain

import "fmt"

// Ref points at an output attribute of another resource in the same plan.
type Ref struct {
	Address   string `json:"address"`
	Attribute string `json:"attribute"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s.%s", r.Address, r.Attribute)
}

func (r Ref) IsZero() bool {
	return r.Address == "" && r.Attribute == ""
}

// ResourceSpec is one declared resource of a plan. Implementations are value
// types; Bind returns a copy and never mutates the receiver.
type ResourceSpec interface {
	Address() string
	Kind() ResourceKind
	// Attributes returns the comparable desired attributes. Unbound references
	// are reported as UnknownValue.
	Attributes() map[string]any
	References() []Ref
	Bind(values map[Ref]string) ResourceSpec
}

// LiveResource is what a provider reports for an existing cloud object.
type LiveResource struct {
	Kind       ResourceKind
	ID         string
	Attributes map[string]any
	Outputs    map[string]string
}

func (l *LiveResource) Output(name string) (string, bool) {
	if l == nil || l.Outputs == nil {
		return "", false
	}
	v, ok := l.Outputs[name]
	return v, ok
}
