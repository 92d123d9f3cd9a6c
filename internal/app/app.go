package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/webstack/internal/config"
	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/core/ports"
	"github.com/olusolaa/webstack/internal/errors"
	"github.com/olusolaa/webstack/internal/site"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Application wires the engine to the command line. Fields that a command
// does not need may be nil.
type Application struct {
	Config   *config.Config
	Logger   ports.Logger
	Engine   ports.Engine
	Reporter ports.Reporter
	Identity ports.IdentityProvider
	Store    ports.StateStore
	Importer ports.StateImporter
	Plan     domain.Plan
	Assets   []site.Asset
	Region   string

	Out io.Writer
	In  io.Reader
}

func (a *Application) out() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

func (a *Application) in() io.Reader {
	if a.In == nil {
		return os.Stdin
	}
	return a.In
}

// Init verifies credentials and reports what a plan would manage.
func (a *Application) Init(ctx context.Context) (ports.Identity, error) {
	id, err := a.Identity.CallerIdentity(ctx)
	if err != nil {
		a.Logger.Errorf(ctx, err, "Credential check failed")
		return ports.Identity{}, err
	}

	w := a.out()
	fmt.Fprintf(w, "AWS account:  %s\n", id.Account)
	fmt.Fprintf(w, "Caller ARN:   %s\n", id.ARN)
	fmt.Fprintf(w, "Region:       %s\n", id.Region)
	fmt.Fprintf(w, "Resources:    %d in %d stages (%d site files)\n", len(a.Plan.Resources()), a.Plan.StageCount(), len(a.Assets))
	if a.Store != nil {
		fmt.Fprintf(w, "State file:   %s\n", a.Store.Location())
	}
	fmt.Fprintln(w, "\nwebstack is ready. Run `webstack plan` to preview changes.")
	return id, nil
}

type planFile struct {
	Plan    domain.PlanDocument `json:"plan"`
	Changes domain.ChangeSet    `json:"changes"`
}

// RunPlan prints the change set and, when outPath is set, writes the plan
// and change set as JSON.
func (a *Application) RunPlan(ctx context.Context, outPath string) (domain.ChangeSet, error) {
	cs, err := a.Engine.Plan(ctx, a.Plan)
	if err != nil {
		return domain.ChangeSet{}, err
	}
	if err := a.Reporter.ReportPlan(ctx, cs); err != nil {
		return cs, errors.Wrap(err, errors.CodeInternal, "failed to report plan")
	}
	if outPath == "" {
		return cs, nil
	}

	raw, err := json.MarshalIndent(planFile{Plan: a.Plan.Describe(), Changes: cs}, "", "  ")
	if err != nil {
		return cs, errors.Wrap(err, errors.CodeInternal, "failed to encode plan")
	}
	if err := os.WriteFile(outPath, append(raw, '\n'), 0o644); err != nil {
		return cs, errors.WrapUserFacing(err, errors.CodeInternal,
			fmt.Sprintf("failed to write plan to %s", outPath), "Check that the directory exists and is writable.")
	}
	a.Logger.Infof(ctx, "Plan written to %s", outPath)
	return cs, nil
}

// Apply plans, asks for confirmation unless autoApprove is set, and applies.
// A plan without changes is still applied so that objects found by discovery
// are recorded in state.
func (a *Application) Apply(ctx context.Context, autoApprove bool) (domain.ApplyResult, error) {
	cs, err := a.Engine.Plan(ctx, a.Plan)
	if err != nil {
		return domain.ApplyResult{}, err
	}
	if err := a.Reporter.ReportPlan(ctx, cs); err != nil {
		return domain.ApplyResult{}, errors.Wrap(err, errors.CodeInternal, "failed to report plan")
	}
	if cs.HasChanges() && !autoApprove {
		if err := a.confirm("Do you want to apply these changes?"); err != nil {
			return domain.ApplyResult{}, err
		}
	}

	result, err := a.Engine.Apply(ctx, a.Plan, cs)
	if err != nil {
		return result, err
	}
	if err := a.Reporter.ReportApply(ctx, result); err != nil {
		return result, errors.Wrap(err, errors.CodeInternal, "failed to report apply result")
	}
	return result, nil
}

// Destroy deletes every object recorded in state.
func (a *Application) Destroy(ctx context.Context, autoApprove bool) (domain.ApplyResult, error) {
	cs, err := a.Engine.PlanDestroy(ctx)
	if err != nil {
		return domain.ApplyResult{}, err
	}
	if err := a.Reporter.ReportPlan(ctx, cs); err != nil {
		return domain.ApplyResult{}, errors.Wrap(err, errors.CodeInternal, "failed to report plan")
	}
	if !cs.HasChanges() {
		return domain.ApplyResult{}, nil
	}
	if !autoApprove {
		if err := a.confirm("Do you really want to destroy all resources?"); err != nil {
			return domain.ApplyResult{}, err
		}
	}

	result, err := a.Engine.Apply(ctx, a.Plan, cs)
	if err != nil {
		return result, err
	}
	if err := a.Reporter.ReportApply(ctx, result); err != nil {
		return result, errors.Wrap(err, errors.CodeInternal, "failed to report destroy result")
	}
	return result, nil
}

// Output prints all outputs, or only the raw value of name.
func (a *Application) Output(ctx context.Context, name string) error {
	outputs, err := a.outputs(ctx)
	if err != nil {
		return err
	}
	if name == "" {
		return a.Reporter.ReportOutputs(ctx, outputs)
	}
	value, ok := outputs[name]
	if !ok {
		return errors.NewUserFacing(errors.CodeInputValidation,
			fmt.Sprintf("output %q not found", name), "Run `webstack output` to list recorded outputs.")
	}
	fmt.Fprintln(a.out(), value)
	return nil
}

func (a *Application) outputs(ctx context.Context) (map[string]string, error) {
	if a.Engine != nil {
		return a.Engine.Outputs(ctx)
	}
	st, err := a.Store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return st.Outputs, nil
}

// Import seeds state from terraform show -json output. Entries already in
// state are replaced.
func (a *Application) Import(ctx context.Context, path string) (int, error) {
	entries, err := a.Importer.Import(ctx, path)
	if err != nil {
		return 0, err
	}
	st, err := a.Store.Load(ctx)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if prev, ok := st.Entry(e.Address); ok && prev.ID != e.ID {
			a.Logger.Warnf(ctx, "Replacing state entry %s (%s -> %s)", e.Address, prev.ID, e.ID)
		}
		st.Put(e)
	}
	if err := a.Store.Save(ctx, st); err != nil {
		return 0, err
	}
	fmt.Fprintf(a.out(), "Imported %d resources into %s. Run `webstack plan` to compare them.\n", len(entries), a.Store.Location())
	return len(entries), nil
}

func (a *Application) confirm(question string) error {
	w := a.out()
	fmt.Fprintf(w, "\n%s\n  Only 'yes' will be accepted to confirm.\n\n  Enter a value: ", question)
	reader := bufio.NewReader(a.in())
	answer, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return errors.Wrap(err, errors.CodeInternal, "failed to read confirmation")
	}
	if strings.TrimSpace(answer) != "yes" {
		return errors.NewUserFacing(errors.CodeAborted, "Cancelled, no changes were made.", "Answer 'yes' or pass --auto-approve.")
	}
	return nil
}
