package json

import (
	"context"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/core/ports"
)

const ReporterTypeJSON = "json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct{}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

var _ ports.Reporter = (*Reporter)(nil)

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	return NewReporterWithWriter(cfg, os.Stdout, logger), nil
}

func NewReporterWithWriter(cfg Config, w io.Writer, logger ports.Logger) *Reporter {
	return &Reporter{config: cfg, writer: w, logger: logger}
}

type planReport struct {
	Destroy bool                 `json:"destroy"`
	Summary domain.ChangeSummary `json:"summary"`
	Changes []changeItem         `json:"changes"`
}

type changeItem struct {
	Address string              `json:"address"`
	Kind    domain.ResourceKind `json:"kind"`
	Action  domain.ChangeAction `json:"action"`
	Stage   int                 `json:"stage"`
	ID      string              `json:"id,omitempty"`
	Diffs   []attributeDiff     `json:"differences,omitempty"`
}

type attributeDiff struct {
	AttributeName string `json:"attribute_name"`
	ExpectedValue any    `json:"expected_value"`
	ActualValue   any    `json:"actual_value"`
	Details       string `json:"details,omitempty"`
	ForcesReplace bool   `json:"forces_replace,omitempty"`
}

type applyReport struct {
	Summary domain.ChangeSummary `json:"summary"`
	Outputs map[string]string    `json:"outputs"`
}

func (r *Reporter) ReportPlan(ctx context.Context, changes domain.ChangeSet) error {
	report := planReport{
		Destroy: changes.Destroy,
		Summary: changes.Summary(),
		Changes: make([]changeItem, 0, len(changes.Changes)),
	}
	for _, ch := range changes.Changes {
		if ctx.Err() != nil {
			r.logger.Warnf(ctx, "JSON report generation cancelled.")
			return ctx.Err()
		}
		item := changeItem{Address: ch.Address, Kind: ch.Kind, Action: ch.Action, Stage: ch.Stage, ID: ch.ID}
		for _, d := range ch.Diffs {
			item.Diffs = append(item.Diffs, attributeDiff{
				AttributeName: d.AttributeName,
				ExpectedValue: d.ExpectedValue,
				ActualValue:   d.ActualValue,
				Details:       d.Details,
				ForcesReplace: d.ForcesReplace,
			})
		}
		report.Changes = append(report.Changes, item)
	}
	return r.encode(ctx, report)
}

func (r *Reporter) ReportApply(ctx context.Context, result domain.ApplyResult) error {
	outputs := result.Outputs
	if outputs == nil {
		outputs = map[string]string{}
	}
	return r.encode(ctx, applyReport{Summary: result.Summary, Outputs: outputs})
}

func (r *Reporter) ReportOutputs(ctx context.Context, outputs map[string]string) error {
	if outputs == nil {
		outputs = map[string]string{}
	}
	return r.encode(ctx, outputs)
}

func (r *Reporter) encode(ctx context.Context, v any) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		r.logger.Errorf(ctx, err, "Failed to encode JSON report")
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	r.logger.Debugf(ctx, "JSON report successfully generated.")
	return nil
}
