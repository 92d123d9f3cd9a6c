package domain

import (
	"fmt"
)

// OutputSpec names a value exported after apply.
type OutputSpec struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Value       Ref    `json:"value"`
}

// Plan is the immutable desired state. Stages are applied in order and the
// resources inside one stage are independent of each other.
type Plan struct {
	stages  [][]ResourceSpec
	outputs []OutputSpec
}

func NewPlan(stages [][]ResourceSpec, outputs []OutputSpec) (Plan, error) {
	seen := make(map[string]int)
	copied := make([][]ResourceSpec, 0, len(stages))
	for i, stage := range stages {
		for _, res := range stage {
			if res == nil {
				return Plan{}, fmt.Errorf("stage %d contains a nil resource", i)
			}
			addr := res.Address()
			if addr == "" {
				return Plan{}, fmt.Errorf("stage %d contains a %s without address", i, res.Kind())
			}
			if prev, dup := seen[addr]; dup {
				return Plan{}, fmt.Errorf("duplicate resource address %q (stages %d and %d)", addr, prev, i)
			}
			seen[addr] = i
		}
		copied = append(copied, append([]ResourceSpec(nil), stage...))
	}

	for i, stage := range copied {
		for _, res := range stage {
			for _, ref := range res.References() {
				refStage, ok := seen[ref.Address]
				if !ok {
					return Plan{}, fmt.Errorf("%s references unknown resource %q", res.Address(), ref.Address)
				}
				if refStage >= i {
					return Plan{}, fmt.Errorf("%s references %q which is not in an earlier stage", res.Address(), ref.Address)
				}
			}
		}
	}
	for _, out := range outputs {
		if _, ok := seen[out.Value.Address]; !ok {
			return Plan{}, fmt.Errorf("output %q references unknown resource %q", out.Name, out.Value.Address)
		}
	}

	return Plan{stages: copied, outputs: append([]OutputSpec(nil), outputs...)}, nil
}

func (p Plan) StageCount() int { return len(p.stages) }

// Stage returns a copy of stage i.
func (p Plan) Stage(i int) []ResourceSpec {
	if i < 0 || i >= len(p.stages) {
		return nil
	}
	return append([]ResourceSpec(nil), p.stages[i]...)
}

func (p Plan) Outputs() []OutputSpec {
	return append([]OutputSpec(nil), p.outputs...)
}

// Resources returns every resource in stage order.
func (p Plan) Resources() []ResourceSpec {
	var out []ResourceSpec
	for _, s := range p.stages {
		out = append(out, s...)
	}
	return out
}

func (p Plan) StageOf(address string) (int, bool) {
	for i, s := range p.stages {
		for _, r := range s {
			if r.Address() == address {
				return i, true
			}
		}
	}
	return 0, false
}

// PlanDocument is the serializable form of a plan.
type PlanDocument struct {
	Stages  [][]PlanResource `json:"stages"`
	Outputs []OutputSpec     `json:"outputs"`
}

type PlanResource struct {
	Address string       `json:"address"`
	Kind    ResourceKind `json:"kind"`
	Spec    ResourceSpec `json:"spec"`
}

func (p Plan) Describe() PlanDocument {
	doc := PlanDocument{Outputs: p.Outputs(), Stages: make([][]PlanResource, 0, len(p.stages))}
	for _, s := range p.stages {
		stage := make([]PlanResource, 0, len(s))
		for _, r := range s {
			stage = append(stage, PlanResource{Address: r.Address(), Kind: r.Kind(), Spec: r})
		}
		doc.Stages = append(doc.Stages, stage)
	}
	return doc
}
