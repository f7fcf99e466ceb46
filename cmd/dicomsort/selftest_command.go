package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dicomsort/internal/logging"
	"dicomsort/internal/selftest"
	"dicomsort/internal/services"
)

func newSelfTestCommand(ctx *commandContext) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Download the public sample data and sort it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfTest(cmd, ctx, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}

func runSelfTest(cmd *cobra.Command, ctx *commandContext, verbose bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg, verbose)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	runCtx := services.WithRunID(cmd.Context(), uuid.NewString())

	progress := newProgress(cmd.ErrOrStderr(), !verbose)
	runner := selftest.NewRunner(cfg, selfTestFetcher, newResolver(logger), logger)
	report, err := runner.Run(runCtx, progress.Observe)
	progress.Finish()

	out := cmd.OutOrStdout()
	if report.Summary.Total() > 0 {
		fmt.Fprintln(out, renderSummary(report.Summary, nil))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Self-test passed: sorted %d files into %s\n", report.Summary.Organized, report.OutputDir)
	return nil
}
