package app

import (
	"context"

	"github.com/olusolaa/webstack/internal/adapters/vars"
	"github.com/olusolaa/webstack/internal/config"
	"github.com/olusolaa/webstack/internal/core/ports"
	"github.com/olusolaa/webstack/internal/stack"
)

// VarsKey is the viper key the --var flag is bound to.
const VarsKey = "vars"

// resolveInputs layers config inputs, var files and --var assignments, in
// that order, over the stack defaults.
func resolveInputs(ctx context.Context, cfg *config.Config, assignments []string, logger ports.Logger) (stack.Inputs, error) {
	merged := make(map[string]any, len(cfg.Inputs))
	for k, v := range cfg.Inputs {
		merged[k] = v
	}

	if len(cfg.VarFiles) > 0 {
		logger.Debugf(ctx, "Loading variable files: %v", cfg.VarFiles)
		fromFiles, err := vars.NewLoader(logger).Load(ctx, cfg.VarFiles)
		if err != nil {
			return stack.Inputs{}, err
		}
		for k, v := range fromFiles {
			merged[k] = v
		}
	}

	overrides, err := vars.ParseAssignments(assignments)
	if err != nil {
		return stack.Inputs{}, err
	}
	for k, v := range overrides {
		logger.Debugf(ctx, "Variable %s set from command line", k)
		merged[k] = v
	}

	return stack.DecodeInputs(ctx, merged)
}
