package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/olusolaa/webstack/internal/app"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Validate configuration, inputs and the site directory, and check AWS credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.BuildApplicationFromViper(cmd.Context(), viper.GetViper())
			if err != nil {
				return err
			}
			application.Out = cmd.OutOrStdout()
			_, err = application.Init(cmd.Context())
			return err
		},
	}
}

func newPlanCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the changes apply would make",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.BuildApplicationFromViper(cmd.Context(), viper.GetViper())
			if err != nil {
				return err
			}
			_, err = application.RunPlan(cmd.Context(), outPath)
			return err
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the plan and change set as JSON to this file")
	return cmd
}

func newApplyCmd() *cobra.Command {
	var autoApprove bool
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or update the stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.BuildApplicationFromViper(cmd.Context(), viper.GetViper())
			if err != nil {
				return err
			}
			application.Out = cmd.OutOrStdout()
			application.In = cmd.InOrStdin()
			_, err = application.Apply(cmd.Context(), autoApprove)
			return err
		},
	}
	cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "Skip interactive approval")
	return cmd
}

func newDestroyCmd() *cobra.Command {
	var autoApprove bool
	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete every resource recorded in state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.BuildPlatformApplication(cmd.Context(), viper.GetViper())
			if err != nil {
				return err
			}
			application.Out = cmd.OutOrStdout()
			application.In = cmd.InOrStdin()
			_, err = application.Destroy(cmd.Context(), autoApprove)
			return err
		},
	}
	cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "Skip interactive approval")
	return cmd
}

func newOutputCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "output [name]",
		Short: "Print outputs recorded by the last apply",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.BuildLocalApplication(cmd.Context(), viper.GetViper())
			if err != nil {
				return err
			}
			application.Out = cmd.OutOrStdout()
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return application.Output(cmd.Context(), name)
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <terraform-show.json>",
		Short: "Adopt a stack created by Terraform from `terraform show -json` output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.BuildApplicationFromViper(cmd.Context(), viper.GetViper())
			if err != nil {
				return err
			}
			application.Out = cmd.OutOrStdout()
			_, err = application.Import(cmd.Context(), args[0])
			return err
		},
	}
}
