package domain

type ChangeAction string

const (
	ActionNoOp    ChangeAction = "no-op"
	ActionCreate  ChangeAction = "create"
	ActionUpdate  ChangeAction = "update"
	ActionReplace ChangeAction = "replace"
	ActionDelete  ChangeAction = "delete"
)

type AttributeDiff struct {
	AttributeName string `json:"attribute"`
	ExpectedValue any    `json:"expected"`
	ActualValue   any    `json:"actual"`
	Details       string `json:"details,omitempty"`
	ForcesReplace bool   `json:"forces_replace,omitempty"`
}

type ResourceChange struct {
	Address string       `json:"address"`
	Kind    ResourceKind `json:"kind"`
	Action  ChangeAction `json:"action"`
	Stage   int          `json:"stage"`
	// ID is the provider id of the existing object, empty for creates.
	ID    string          `json:"id,omitempty"`
	Diffs []AttributeDiff `json:"diffs,omitempty"`
	// Desired is nil for deletes.
	Desired ResourceSpec `json:"-"`
	// LiveOutputs are the outputs of the existing object at plan time.
	LiveOutputs map[string]string `json:"-"`
}

type ChangeSet struct {
	Changes []ResourceChange `json:"changes"`
	Outputs []OutputSpec     `json:"outputs,omitempty"`
	Destroy bool             `json:"destroy,omitempty"`
}

type ChangeSummary struct {
	Create  int `json:"create"`
	Update  int `json:"update"`
	Replace int `json:"replace"`
	Delete  int `json:"delete"`
	NoOp    int `json:"no_op"`
}

func (c ChangeSet) Summary() ChangeSummary {
	var s ChangeSummary
	for _, ch := range c.Changes {
		switch ch.Action {
		case ActionCreate:
			s.Create++
		case ActionUpdate:
			s.Update++
		case ActionReplace:
			s.Replace++
		case ActionDelete:
			s.Delete++
		default:
			s.NoOp++
		}
	}
	return s
}

func (c ChangeSet) HasChanges() bool {
	for _, ch := range c.Changes {
		if ch.Action != ActionNoOp {
			return true
		}
	}
	return false
}

type ApplyResult struct {
	Summary ChangeSummary     `json:"summary"`
	Outputs map[string]string `json:"outputs,omitempty"`
}
