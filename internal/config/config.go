package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/olusolaa/webstack/internal/errors"
	"github.com/olusolaa/webstack/internal/log"
)

const (
	ReporterTypeText = "text"
	ReporterTypeJSON = "json"

	DefaultStatePath = "webstack.state.json"
	DefaultSiteDir   = "./website"
)

type Config struct {
	Settings SettingsConfig `mapstructure:"settings"`
	State    StateConfig    `mapstructure:"state"`
	Platform PlatformConfig `mapstructure:"platform"`
	Site     SiteConfig     `mapstructure:"site"`
	// Inputs holds plan variables set in the config file. Var files and
	// --var flags take precedence.
	Inputs   map[string]any `mapstructure:"inputs"`
	VarFiles []string       `mapstructure:"var_files"`
}

type SettingsConfig struct {
	LogLevel     log.Level  `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat    log.Format `mapstructure:"log_format" validate:"oneof=text json"`
	Concurrency  int        `mapstructure:"concurrency" validate:"min=1,max=64"`
	ReporterType string     `mapstructure:"reporter" validate:"oneof=text json"`
	NoColor      bool       `mapstructure:"no_color"`
	// WaitForDeployment makes apply block until CloudFront changes deploy.
	WaitForDeployment bool `mapstructure:"wait_for_deployment"`
}

type StateConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type PlatformConfig struct {
	AWS AWSPlatformConfig `mapstructure:"aws"`
}

type AWSPlatformConfig struct {
	Region               string `mapstructure:"region"`
	Profile              string `mapstructure:"profile"`
	APIRequestsPerSecond int    `mapstructure:"api_requests_per_second" validate:"min=1,max=100"`
}

type SiteConfig struct {
	Dir     string   `mapstructure:"dir" validate:"required"`
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`
}

func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			LogLevel:          log.LevelInfo,
			LogFormat:         log.FormatText,
			Concurrency:       10,
			ReporterType:      ReporterTypeText,
			WaitForDeployment: true,
		},
		State: StateConfig{Path: DefaultStatePath},
		Platform: PlatformConfig{
			AWS: AWSPlatformConfig{APIRequestsPerSecond: 20},
		},
		Site: SiteConfig{
			Dir:     DefaultSiteDir,
			Include: []string{"**"},
		},
		Inputs: map[string]any{},
	}
}

func (c *Config) LogConfig() log.Config {
	return log.Config{Level: c.Settings.LogLevel, Format: c.Settings.LogFormat}
}

// Validate checks struct constraints and returns a user-facing error that
// lists every failing field.
func (c *Config) Validate(ctx context.Context) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.StructCtx(ctx, c)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, errors.CodeConfigValidation, "configuration validation failed")
	}
	var details strings.Builder
	details.WriteString("Configuration validation failed:")
	for _, fe := range validationErrors {
		details.WriteString(fmt.Sprintf("\n - Field '%s': Failed on '%s' validation (value: '%v')", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.NewUserFacing(errors.CodeConfigValidation, details.String(), "Please check your configuration file or flags.")
}
