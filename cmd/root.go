package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/olusolaa/webstack/internal/app"
	"github.com/olusolaa/webstack/internal/config"
	apperrors "github.com/olusolaa/webstack/internal/errors"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "webstack",
	Short: "Provisions a web server and a CloudFront-fronted S3 static site on AWS.",
	Long: `webstack applies a fixed infrastructure plan: a security group and an EC2
web server, plus an S3 website bucket holding the files of a local site
directory behind a CloudFront distribution. It records what it created in a
local state file so later runs update, replace or destroy the same objects.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig()
	},
}

func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		return 1
	}
	return 0
}

func init() {
	cobra.CheckErr(bindPersistentFlags(rootCmd, viper.GetViper()))

	viper.SetEnvPrefix("WEBSTACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(newInitCmd(), newPlanCmd(), newApplyCmd(), newDestroyCmd(), newOutputCmd(), newImportCmd())
}

// bindPersistentFlags registers the global flags on cmd and binds them to
// their configuration keys in v.
func bindPersistentFlags(cmd *cobra.Command, v *viper.Viper) error {
	defaults := config.DefaultConfig()
	flags := cmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default is ./.webstack.yaml or $HOME/.webstack.yaml)")
	flags.String("log-level", string(defaults.Settings.LogLevel), "Log level (debug, info, warn, error)")
	flags.String("log-format", string(defaults.Settings.LogFormat), "Log format (text, json)")
	flags.String("state", defaults.State.Path, "Path of the state file")
	// Values may contain commas, so each --var is taken whole.
	flags.StringArray("var", nil, "Set a variable (name=value); may be repeated")
	flags.StringSlice("var-file", nil, "Load variables from an HCL or JSON file; may be repeated")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("reporter", defaults.Settings.ReporterType, "Output format for plans and results (text, json)")

	bindings := map[string]string{
		"settings.log_level":  "log-level",
		"settings.log_format": "log-format",
		"state.path":          "state",
		app.VarsKey:           "var",
		"var_files":           "var-file",
		"settings.no_color":   "no-color",
		"settings.reporter":   "reporter",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

func initializeConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".webstack")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return apperrors.WrapUserFacing(err, apperrors.CodeConfigReadError,
				fmt.Sprintf("failed to read config file: %v", err), "Check the --config path and YAML syntax.")
		}
	}
	return nil
}

func printError(err error) {
	userMsg, suggestion, ok := apperrors.GetUserFacingMessage(err)
	if !ok {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n  %v\n", userMsg, err)
		return
	}
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", userMsg)
	if suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", suggestion)
	}
}
