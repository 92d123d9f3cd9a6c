// Package vars reads plan variables from .tfvars and .tfvars.json files.
package vars

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/olusolaa/webstack/internal/core/ports"
	"github.com/olusolaa/webstack/internal/errors"
)

type Loader struct {
	parser *hclparse.Parser
	logger ports.Logger
}

func NewLoader(logger ports.Logger) *Loader {
	return &Loader{parser: hclparse.NewParser(), logger: logger}
}

// Load reads every file in order; later files override earlier ones.
func (l *Loader) Load(ctx context.Context, paths []string) (map[string]any, error) {
	merged := make(map[string]any)
	for _, path := range paths {
		values, err := l.LoadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		for k, v := range values {
			merged[k] = v
		}
	}
	return merged, nil
}

// LoadFile evaluates the top-level attributes of one var file. Every value
// must convert to a string, the type of all plan variables.
func (l *Loader) LoadFile(ctx context.Context, path string) (map[string]any, error) {
	logger := l.logger.WithFields(map[string]any{"vars_file": path})
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeAborted, "variable loading cancelled")
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeHCLVariableError,
			fmt.Sprintf("cannot read variables file %s", path), "Check the --var-file path.")
	}

	var file *hcl.File
	var diags hcl.Diagnostics
	if strings.HasSuffix(path, ".json") {
		file, diags = l.parser.ParseJSON(src, path)
	} else {
		file, diags = l.parser.ParseHCL(src, path)
	}
	if diags.HasErrors() {
		return nil, diagnosticsError(path, errors.CodeHCLParseError, diags)
	}

	attrs, attrDiags := file.Body.JustAttributes()
	diags = append(diags, attrDiags...)
	if attrDiags.HasErrors() {
		return nil, diagnosticsError(path, errors.CodeHCLParseError, diags)
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make(map[string]any, len(attrs))
	for _, name := range names {
		attr := attrs[name]
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		str, convDiags := toString(val, attr.Range)
		diags = append(diags, convDiags...)
		if convDiags.HasErrors() {
			continue
		}
		values[name] = str
	}
	if diags.HasErrors() {
		return nil, diagnosticsError(path, errors.CodeHCLVariableError, diags)
	}
	logger.Debugf(ctx, "Loaded %d variables", len(values))
	return values, nil
}

func toString(val cty.Value, subject hcl.Range) (string, hcl.Diagnostics) {
	if val.IsNull() {
		return "", hcl.Diagnostics{{Severity: hcl.DiagError, Summary: "Null variable value", Detail: "Variables cannot be null.", Subject: &subject}}
	}
	conv, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", hcl.Diagnostics{{Severity: hcl.DiagError, Summary: "Incorrect variable type", Detail: err.Error(), Subject: &subject}}
	}
	return conv.AsString(), nil
}

// diagnosticsError reports syntax problems as CodeHCLParseError and bad
// values as CodeHCLVariableError.
func diagnosticsError(path string, code errors.Code, diags hcl.Diagnostics) error {
	return errors.WrapUserFacing(&DiagnosticsError{FilePath: path, Diags: diags}, code,
		diags.Error(), "Var files take name = \"value\" assignments of strings.")
}

// ParseAssignments parses --var flags of the form name=value. The value may
// contain further '=' characters.
func ParseAssignments(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.NewUserFacing(errors.CodeInputValidation,
				fmt.Sprintf("invalid variable assignment %q", pair), "Use --var name=value.")
		}
		values[name] = value
	}
	return values, nil
}
