package text

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/core/ports"
)

const ReporterTypeText = "text"

type Config struct {
	NoColor bool
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

var _ ports.Reporter = (*Reporter)(nil)

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	if !isTerminal(os.Stdout) {
		cfg.NoColor = true
	}
	return NewReporterWithWriter(cfg, os.Stdout, logger), nil
}

// NewReporterWithWriter writes to w instead of stdout.
func NewReporterWithWriter(cfg Config, w io.Writer, logger ports.Logger) *Reporter {
	if cfg.NoColor {
		color.NoColor = true
	}
	return &Reporter{config: cfg, writer: w, logger: logger}
}

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

var (
	green   = color.New(color.FgGreen).SprintFunc()
	yellow  = color.New(color.FgYellow).SprintFunc()
	red     = color.New(color.FgRed).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
	bold    = color.New(color.Bold).SprintFunc()
)

func actionLabel(action domain.ChangeAction) string {
	switch action {
	case domain.ActionCreate:
		return green("+ create")
	case domain.ActionUpdate:
		return yellow("~ update")
	case domain.ActionReplace:
		return magenta("-/+ replace")
	case domain.ActionDelete:
		return red("- delete")
	default:
		return "  no-op"
	}
}

func (r *Reporter) ReportPlan(ctx context.Context, changes domain.ChangeSet) error {
	title := "Execution Plan"
	if changes.Destroy {
		title = "Destroy Plan"
	}
	fmt.Fprintln(r.writer, bold(title))
	fmt.Fprintln(r.writer, strings.Repeat("=", len(title)))

	if !changes.HasChanges() {
		fmt.Fprintln(r.writer, "No changes. Infrastructure matches the configuration.")
		return nil
	}

	tw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Action\tKind\tAddress\tDetails")
	fmt.Fprintln(tw, "------\t----\t-------\t-------")
	for _, ch := range changes.Changes {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if ch.Action == domain.ActionNoOp {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", actionLabel(ch.Action), ch.Kind, ch.Address, r.formatChangeDetails(ch))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := changes.Summary()
	fmt.Fprintf(r.writer, "\nPlan: %s to create, %s to update, %s to replace, %s to delete (%d unchanged).\n",
		green(s.Create), yellow(s.Update), magenta(s.Replace), red(s.Delete), s.NoOp)
	return nil
}

func (r *Reporter) formatChangeDetails(ch domain.ResourceChange) string {
	switch ch.Action {
	case domain.ActionCreate:
		return ""
	case domain.ActionDelete:
		return fmt.Sprintf("id %s", ch.ID)
	}
	if len(ch.Diffs) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%d attributes differ: ", len(ch.Diffs)))
	for i, diff := range ch.Diffs {
		if i > 0 {
			builder.WriteString("; ")
		}
		builder.WriteString(fmt.Sprintf("%s=[Expected: %v, Actual: %v]",
			diff.AttributeName,
			r.formatValue(diff.ExpectedValue),
			r.formatValue(diff.ActualValue)))
		if diff.ForcesReplace {
			builder.WriteString(" (forces replacement)")
		} else if diff.Details != "" {
			builder.WriteString(fmt.Sprintf(" (%s)", diff.Details))
		}
	}
	return builder.String()
}

func (r *Reporter) formatValue(value any) string {
	const maxLen = 100
	str := strings.ReplaceAll(fmt.Sprintf("%v", value), "\n", `\n`)
	if len(str) > maxLen {
		return str[:maxLen-3] + "..."
	}
	return str
}

func (r *Reporter) ReportApply(ctx context.Context, result domain.ApplyResult) error {
	s := result.Summary
	fmt.Fprintf(r.writer, "\n%s Resources: %d created, %d updated, %d replaced, %d deleted.\n",
		green("Apply complete!"), s.Create, s.Update, s.Replace, s.Delete)
	if len(result.Outputs) == 0 {
		return nil
	}
	fmt.Fprintln(r.writer)
	return r.ReportOutputs(ctx, result.Outputs)
}

func (r *Reporter) ReportOutputs(ctx context.Context, outputs map[string]string) error {
	if len(outputs) == 0 {
		fmt.Fprintln(r.writer, "No outputs recorded. Run apply first.")
		return nil
	}
	names := make([]string, 0, len(outputs))
	for name := range outputs {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(r.writer, bold("Outputs:"))
	tw := tabwriter.NewWriter(r.writer, 0, 8, 1, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t= %q\n", name, outputs[name])
	}
	return tw.Flush()
}
