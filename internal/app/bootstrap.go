package app

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/olusolaa/webstack/internal/adapters/platform/aws"
	"github.com/olusolaa/webstack/internal/adapters/state/localstate"
	"github.com/olusolaa/webstack/internal/adapters/state/tfimport"
	"github.com/olusolaa/webstack/internal/config"
	"github.com/olusolaa/webstack/internal/core/ports"
	"github.com/olusolaa/webstack/internal/core/service"
	"github.com/olusolaa/webstack/internal/errors"
	"github.com/olusolaa/webstack/internal/log"
	jsonreport "github.com/olusolaa/webstack/internal/reporting/json"
	"github.com/olusolaa/webstack/internal/reporting/text"
	"github.com/olusolaa/webstack/internal/resources/cdn"
	"github.com/olusolaa/webstack/internal/resources/compute"
	"github.com/olusolaa/webstack/internal/resources/storage"
	"github.com/olusolaa/webstack/internal/site"
	"github.com/olusolaa/webstack/internal/stack"
)

type bootstrapOptions struct {
	providerOpts []aws.ProviderOption
}

type BootstrapOption func(*bootstrapOptions)

// WithProviderOptions passes options through to the AWS provider.
func WithProviderOptions(opts ...aws.ProviderOption) BootstrapOption {
	return func(o *bootstrapOptions) {
		o.providerOpts = append(o.providerOpts, opts...)
	}
}

// BuildLocalApplication loads configuration, the logger, the state store and
// the reporter. It needs neither AWS credentials nor plan inputs.
func BuildLocalApplication(ctx context.Context, v *viper.Viper) (*Application, error) {
	cfg, err := loadConfig(ctx, v)
	if err != nil {
		return nil, err
	}
	logger, err := log.NewLogger(cfg.LogConfig())
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "logger initialization failed")
	}
	if v.ConfigFileUsed() != "" {
		logger.Debugf(ctx, "Using configuration file: %s", v.ConfigFileUsed())
	} else {
		logger.Debugf(ctx, "No configuration file found, using defaults/env/flags.")
	}

	reporter, err := newReporter(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	store := localstate.NewStore(cfg.State.Path, logger)

	return &Application{Config: cfg, Logger: logger, Reporter: reporter, Store: store}, nil
}

// BuildPlatformApplication adds the AWS provider and the engine to the local
// application. It reads no plan inputs and no site files, which is all
// destroy needs since deletes come from the state file.
func BuildPlatformApplication(ctx context.Context, v *viper.Viper, opts ...BootstrapOption) (*Application, error) {
	o := &bootstrapOptions{}
	for _, opt := range opts {
		opt(o)
	}

	application, err := BuildLocalApplication(ctx, v)
	if err != nil {
		return nil, err
	}
	cfg, logger := application.Config, application.Logger

	provLog := logger.WithFields(map[string]any{"provider": "aws"})
	provider, err := aws.NewProvider(ctx, cfg, provLog, o.providerOpts...)
	if err != nil {
		return nil, err
	}

	registry, err := newRegistry()
	if err != nil {
		return nil, err
	}
	engine, err := service.NewApplyEngine(registry, provider, application.Store,
		logger.WithFields(map[string]any{"component": "engine"}), cfg.Settings.Concurrency)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize apply engine")
	}

	application.Engine = engine
	application.Identity = provider
	application.Region = provider.Region()
	return application, nil
}

// BuildApplicationFromViper builds everything a command that plans needs:
// the platform application plus inputs, site assets, the plan and the
// Terraform importer.
func BuildApplicationFromViper(ctx context.Context, v *viper.Viper, opts ...BootstrapOption) (*Application, error) {
	application, err := BuildPlatformApplication(ctx, v, opts...)
	if err != nil {
		return nil, err
	}
	cfg, logger := application.Config, application.Logger

	inputs, err := resolveInputs(ctx, cfg, v.GetStringSlice(VarsKey), logger)
	if err != nil {
		return nil, err
	}

	assets, err := site.ListAssets(ctx, cfg.Site.Dir, cfg.Site.Include, cfg.Site.Exclude)
	if err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "Found %d site files under %s", len(assets), cfg.Site.Dir)

	plan, err := stack.Build(inputs, application.Region, assets)
	if err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "Plan built: %d resources in %d stages", len(plan.Resources()), plan.StageCount())

	application.Importer = tfimport.NewImporter(plan, logger.WithFields(map[string]any{"component": "import"}))
	application.Plan = plan
	application.Assets = assets

	logger.Debugf(ctx, "Application bootstrap complete")
	return application, nil
}

func loadConfig(ctx context.Context, v *viper.Viper) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeConfigParseError,
			"failed to parse configuration", "Check the types of the values in your configuration file.")
	}
	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newReporter(ctx context.Context, cfg *config.Config, logger ports.Logger) (ports.Reporter, error) {
	reportLog := logger.WithFields(map[string]any{"component": "reporter", "type": cfg.Settings.ReporterType})
	switch cfg.Settings.ReporterType {
	case config.ReporterTypeText:
		reporter, err := text.NewReporter(text.Config{NoColor: cfg.Settings.NoColor}, reportLog)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize text reporter")
		}
		return reporter, nil
	case config.ReporterTypeJSON:
		reporter, err := jsonreport.NewReporter(jsonreport.Config{}, reportLog)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize JSON reporter")
		}
		return reporter, nil
	default:
		return nil, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("unsupported reporter type: %s", cfg.Settings.ReporterType), "Supported: text, json")
	}
}

func newRegistry() (*service.ComponentRegistry, error) {
	registry := service.NewComponentRegistry()
	comparers := []ports.ResourceComparer{
		compute.NewSecurityGroupComparer(),
		compute.NewInstanceComparer(),
		storage.NewBucketComparer(),
		storage.NewObjectComparer(),
		cdn.NewDistributionComparer(),
	}
	for _, c := range comparers {
		if err := registry.RegisterResourceComparer(c); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
