package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/core/ports"
	"github.com/olusolaa/webstack/internal/errors"
)

const defaultConcurrency = 10

// ApplyEngine turns a plan into a change set by reading the live objects and
// applies change sets stage by stage.
type ApplyEngine struct {
	registry    *ComponentRegistry
	provider    ports.PlatformProvider
	store       ports.StateStore
	logger      ports.Logger
	concurrency int
}

var _ ports.Engine = (*ApplyEngine)(nil)

func NewApplyEngine(
	registry *ComponentRegistry,
	provider ports.PlatformProvider,
	store ports.StateStore,
	logger ports.Logger,
	concurrency int,
) (*ApplyEngine, error) {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if registry == nil {
		return nil, errors.New(errors.CodeInternal, "component registry cannot be nil")
	}
	if provider == nil {
		return nil, errors.New(errors.CodeConfigValidation, "platform provider cannot be nil")
	}
	if store == nil {
		return nil, errors.New(errors.CodeConfigValidation, "state store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New(errors.CodeInternal, "logger cannot be nil")
	}

	return &ApplyEngine{
		registry:    registry,
		provider:    provider,
		store:       store,
		logger:      logger,
		concurrency: concurrency,
	}, nil
}

// Plan compares every resource of plan with its live object. Resources of a
// stage are read concurrently; references to earlier stages are bound from
// live outputs when the referenced object is kept as is.
func (e *ApplyEngine) Plan(ctx context.Context, plan domain.Plan) (domain.ChangeSet, error) {
	state, err := e.store.Load(ctx)
	if err != nil {
		return domain.ChangeSet{}, err
	}
	e.logger.Infof(ctx, "Planning %d resources in %d stages against %s platform", len(plan.Resources()), plan.StageCount(), e.provider.Type())

	known := make(map[domain.Ref]string)
	replacedBuckets := make(map[string]struct{})
	changes := make([]domain.ResourceChange, 0, len(plan.Resources()))

	for stage := 0; stage < plan.StageCount(); stage++ {
		resources := plan.Stage(stage)
		stageChanges := make([]domain.ResourceChange, len(resources))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.concurrency)
		for i, res := range resources {
			i, spec := i, res.Bind(known)
			g.Go(func() error {
				change, err := e.planResource(gctx, state, stage, spec)
				if err != nil {
					return err
				}
				stageChanges[i] = change
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return domain.ChangeSet{}, err
		}

		for i, ch := range stageChanges {
			if b, ok := ch.Desired.(domain.BucketSpec); ok && ch.Action == domain.ActionReplace {
				replacedBuckets[b.Name] = struct{}{}
			}
			stageChanges[i] = recreateIfEmptied(ch, replacedBuckets)
		}
		for _, ch := range stageChanges {
			if ch.Action == domain.ActionNoOp || ch.Action == domain.ActionUpdate {
				for name, value := range ch.LiveOutputs {
					known[domain.Ref{Address: ch.Address, Attribute: name}] = value
				}
			}
		}
		changes = append(changes, stageChanges...)
	}

	changes = append(changes, orphanDeletes(state, plan)...)

	cs := domain.ChangeSet{Changes: changes, Outputs: plan.Outputs()}
	s := cs.Summary()
	e.logger.Infof(ctx, "Plan: %d to create, %d to update, %d to replace, %d to delete", s.Create, s.Update, s.Replace, s.Delete)
	return cs, nil
}

// recreateIfEmptied turns a kept object of a replaced bucket into a create.
// Replacing a bucket deletes everything in it.
func recreateIfEmptied(ch domain.ResourceChange, replacedBuckets map[string]struct{}) domain.ResourceChange {
	obj, ok := ch.Desired.(domain.ObjectSpec)
	if !ok || (ch.Action != domain.ActionNoOp && ch.Action != domain.ActionUpdate) {
		return ch
	}
	if _, emptied := replacedBuckets[obj.Bucket]; !emptied {
		return ch
	}
	ch.Action = domain.ActionCreate
	ch.ID = ""
	ch.Diffs = nil
	ch.LiveOutputs = nil
	return ch
}

func (e *ApplyEngine) planResource(ctx context.Context, state *domain.State, stage int, spec domain.ResourceSpec) (domain.ResourceChange, error) {
	change := domain.ResourceChange{
		Address: spec.Address(),
		Kind:    spec.Kind(),
		Stage:   stage,
		Desired: spec,
	}
	log := e.logger.WithFields(map[string]any{"address": change.Address, "resource_kind": change.Kind})

	handler, err := e.provider.Handler(spec.Kind())
	if err != nil {
		return change, err
	}
	comparer, err := e.registry.GetResourceComparer(spec.Kind())
	if err != nil {
		return change, err
	}

	live, err := e.findLive(ctx, log, handler, state, spec)
	if err != nil {
		return change, err
	}
	if live == nil {
		log.Debugf(ctx, "No live object found, planning create")
		change.Action = domain.ActionCreate
		return change, nil
	}

	change.ID = live.ID
	change.LiveOutputs = live.Outputs

	diffs, replace, err := comparer.Compare(ctx, spec, live)
	if err != nil {
		return change, errors.Wrap(err, errors.CodeComparisonError, fmt.Sprintf("failed to compare %s", change.Address))
	}
	change.Diffs = diffs
	switch {
	case len(diffs) == 0:
		change.Action = domain.ActionNoOp
	case replace:
		change.Action = domain.ActionReplace
	default:
		change.Action = domain.ActionUpdate
	}
	log.Debugf(ctx, "Planned %s with %d attribute differences", change.Action, len(diffs))
	return change, nil
}

// findLive reads the object recorded in state, or discovers it by its
// identifying attributes when state has no entry. A recorded object that no
// longer exists is treated as missing.
func (e *ApplyEngine) findLive(ctx context.Context, log ports.Logger, handler ports.ResourceHandler, state *domain.State, spec domain.ResourceSpec) (*domain.LiveResource, error) {
	if entry, ok := state.Entry(spec.Address()); ok && entry.ID != "" && entry.Kind == spec.Kind() {
		live, err := handler.Read(ctx, entry.ID)
		if err == nil {
			return live, nil
		}
		if !errors.Is(err, errors.CodeResourceNotFound) {
			return nil, err
		}
		log.Warnf(ctx, "Object %s recorded in state no longer exists", entry.ID)
		return nil, nil
	}
	return handler.Discover(ctx, spec)
}

// orphanDeletes returns a delete for every state entry whose address is no
// longer in plan, in reverse stage order.
func orphanDeletes(state *domain.State, plan domain.Plan) []domain.ResourceChange {
	var out []domain.ResourceChange
	for _, entry := range state.Resources {
		if _, ok := plan.StageOf(entry.Address); ok {
			continue
		}
		out = append(out, deleteChange(entry))
	}
	sortForDelete(out)
	return out
}

func deleteChange(entry domain.StateEntry) domain.ResourceChange {
	return domain.ResourceChange{
		Address:     entry.Address,
		Kind:        entry.Kind,
		Action:      domain.ActionDelete,
		Stage:       entry.Stage,
		ID:          entry.ID,
		LiveOutputs: entry.Outputs,
	}
}

func sortForDelete(changes []domain.ResourceChange) {
	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].Stage != changes[j].Stage {
			return changes[i].Stage > changes[j].Stage
		}
		return changes[i].Address > changes[j].Address
	})
}

// PlanDestroy plans the deletion of everything recorded in state.
func (e *ApplyEngine) PlanDestroy(ctx context.Context) (domain.ChangeSet, error) {
	state, err := e.store.Load(ctx)
	if err != nil {
		return domain.ChangeSet{}, err
	}
	changes := make([]domain.ResourceChange, 0, len(state.Resources))
	for _, entry := range state.Resources {
		changes = append(changes, deleteChange(entry))
	}
	sortForDelete(changes)
	e.logger.Infof(ctx, "Destroy plan: %d resources to delete", len(changes))
	return domain.ChangeSet{Changes: changes, Destroy: true}, nil
}

// applyRun carries what one Apply call has learned so far.
type applyRun struct {
	mu      sync.Mutex
	state   *domain.State
	values  map[domain.Ref]string
	summary domain.ChangeSummary
}

func (r *applyRun) record(change domain.ResourceChange, live *domain.LiveResource) {
	r.mu.Lock()
	defer r.mu.Unlock()

	outputs := make(map[string]string, len(live.Outputs))
	for name, value := range live.Outputs {
		outputs[name] = value
		r.values[domain.Ref{Address: change.Address, Attribute: name}] = value
	}
	r.state.Put(domain.StateEntry{
		Address: change.Address,
		Kind:    change.Kind,
		ID:      live.ID,
		Stage:   change.Stage,
		Outputs: outputs,
	})
	r.count(change.Action)
}

func (r *applyRun) forget(change domain.ResourceChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Remove(change.Address)
	r.count(change.Action)
}

func (r *applyRun) count(action domain.ChangeAction) {
	switch action {
	case domain.ActionCreate:
		r.summary.Create++
	case domain.ActionUpdate:
		r.summary.Update++
	case domain.ActionReplace:
		r.summary.Replace++
	case domain.ActionDelete:
		r.summary.Delete++
	default:
		r.summary.NoOp++
	}
}

// Apply executes changes. Stages run in order with the changes of one stage
// running concurrently; state is saved after every stage, including a stage
// that failed, so it always reflects what was done. Deletes of resources no
// longer in the plan run after all stages, in reverse stage order.
func (e *ApplyEngine) Apply(ctx context.Context, plan domain.Plan, changes domain.ChangeSet) (domain.ApplyResult, error) {
	state, err := e.store.Load(ctx)
	if err != nil {
		return domain.ApplyResult{}, err
	}
	run := &applyRun{state: state, values: make(map[domain.Ref]string)}

	var deletes []domain.ResourceChange
	stages := make(map[int][]domain.ResourceChange)
	var order []int
	for _, ch := range changes.Changes {
		if ch.Action == domain.ActionDelete {
			deletes = append(deletes, ch)
			continue
		}
		if _, seen := stages[ch.Stage]; !seen {
			order = append(order, ch.Stage)
		}
		stages[ch.Stage] = append(stages[ch.Stage], ch)
	}
	sort.Ints(order)

	for _, stage := range order {
		e.logger.Debugf(ctx, "Applying stage %d (%d changes)", stage, len(stages[stage]))
		if err := e.applyStage(ctx, run, stages[stage]); err != nil {
			return e.abort(ctx, run, err)
		}
	}

	if err := e.applyDeletes(ctx, run, deletes); err != nil {
		return e.abort(ctx, run, err)
	}

	outputs := map[string]string{}
	if !changes.Destroy {
		outputs = resolveOutputs(changes.Outputs, run.values)
		if len(changes.Outputs) == 0 {
			outputs = resolveOutputs(plan.Outputs(), run.values)
		}
	}
	state.Outputs = outputs
	if err := e.store.Save(ctx, state); err != nil {
		return domain.ApplyResult{}, err
	}

	e.logger.Infof(ctx, "Apply complete: %d created, %d updated, %d replaced, %d deleted",
		run.summary.Create, run.summary.Update, run.summary.Replace, run.summary.Delete)
	return domain.ApplyResult{Summary: run.summary, Outputs: outputs}, nil
}

// abort saves what has been applied and returns err.
func (e *ApplyEngine) abort(ctx context.Context, run *applyRun, err error) (domain.ApplyResult, error) {
	if saveErr := e.store.Save(context.WithoutCancel(ctx), run.state); saveErr != nil {
		e.logger.Errorf(ctx, saveErr, "failed to save state after apply error")
	}
	if ctx.Err() != nil {
		err = errors.WrapUserFacing(err, errors.CodeAborted, "apply was interrupted",
			"State records everything that completed. Run apply again to finish.")
	}
	return domain.ApplyResult{Summary: run.summary}, err
}

func (e *ApplyEngine) applyStage(ctx context.Context, run *applyRun, changes []domain.ResourceChange) error {
	// References point at earlier stages only, so binding once per stage is
	// enough.
	run.mu.Lock()
	values := make(map[domain.Ref]string, len(run.values))
	for k, v := range run.values {
		values[k] = v
	}
	run.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, ch := range changes {
		ch := ch
		g.Go(func() error {
			return e.applyChange(gctx, run, ch, values)
		})
	}
	err := g.Wait()
	if saveErr := e.store.Save(context.WithoutCancel(ctx), run.state); saveErr != nil && err == nil {
		err = saveErr
	}
	return err
}

func (e *ApplyEngine) applyChange(ctx context.Context, run *applyRun, change domain.ResourceChange, values map[domain.Ref]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := e.logger.WithFields(map[string]any{"address": change.Address, "action": change.Action})

	if change.Action == domain.ActionNoOp {
		run.record(change, &domain.LiveResource{Kind: change.Kind, ID: change.ID, Outputs: change.LiveOutputs})
		return nil
	}

	handler, err := e.provider.Handler(change.Kind)
	if err != nil {
		return err
	}
	if change.Desired == nil {
		return errors.New(errors.CodeInternal, fmt.Sprintf("%s change for %s has no desired spec", change.Action, change.Address))
	}

	spec := change.Desired.Bind(values)
	for _, ref := range spec.References() {
		if _, ok := values[ref]; !ok {
			return errors.New(errors.CodeUnresolvedRef,
				fmt.Sprintf("%s needs %s which has no value", change.Address, ref))
		}
	}

	var live *domain.LiveResource
	switch change.Action {
	case domain.ActionCreate:
		log.Infof(ctx, "Creating")
		live, err = handler.Create(ctx, spec)
	case domain.ActionUpdate:
		log.Infof(ctx, "Updating %s", change.ID)
		live, err = handler.Update(ctx, change.ID, spec, change.Diffs)
	case domain.ActionReplace:
		log.Infof(ctx, "Replacing %s", change.ID)
		if err = handler.Delete(ctx, change.ID); err == nil {
			run.mu.Lock()
			run.state.Remove(change.Address)
			run.mu.Unlock()
			live, err = handler.Create(ctx, spec)
		}
	default:
		return errors.New(errors.CodeInternal, fmt.Sprintf("unexpected action %q for %s", change.Action, change.Address))
	}
	if err != nil {
		log.Errorf(ctx, err, "Failed to %s %s", change.Action, change.Address)
		return err
	}
	if live == nil {
		return errors.New(errors.CodeInternal, fmt.Sprintf("handler returned no object for %s", change.Address))
	}

	run.record(change, live)
	log.Debugf(ctx, "Done, id %s", live.ID)
	return nil
}

func (e *ApplyEngine) applyDeletes(ctx context.Context, run *applyRun, deletes []domain.ResourceChange) error {
	if len(deletes) == 0 {
		return nil
	}
	sortForDelete(deletes)

	// Group by stage, highest stage first.
	var groups [][]domain.ResourceChange
	for i, ch := range deletes {
		if i == 0 || deletes[i-1].Stage != ch.Stage {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], ch)
	}

	for _, group := range groups {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.concurrency)
		for _, ch := range group {
			ch := ch
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				handler, err := e.provider.Handler(ch.Kind)
				if err != nil {
					return err
				}
				e.logger.WithFields(map[string]any{"address": ch.Address, "action": ch.Action}).Infof(gctx, "Deleting %s", ch.ID)
				if err := handler.Delete(gctx, ch.ID); err != nil {
					return err
				}
				run.forget(ch)
				return nil
			})
		}
		err := g.Wait()
		if saveErr := e.store.Save(context.WithoutCancel(ctx), run.state); saveErr != nil && err == nil {
			err = saveErr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func resolveOutputs(specs []domain.OutputSpec, values map[domain.Ref]string) map[string]string {
	out := make(map[string]string, len(specs))
	for _, o := range specs {
		if v, ok := values[o.Value]; ok {
			out[o.Name] = v
		}
	}
	return out
}

// Outputs returns the outputs recorded by the last apply.
func (e *ApplyEngine) Outputs(ctx context.Context) (map[string]string, error) {
	state, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(state.Outputs))
	for k, v := range state.Outputs {
		out[k] = v
	}
	return out, nil
}
