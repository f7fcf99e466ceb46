package main

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dicomsort/internal/archive"
	"dicomsort/internal/config"
	"dicomsort/internal/discovery"
	"dicomsort/internal/logging"
	"dicomsort/internal/pattern"
	"dicomsort/internal/placement"
	"dicomsort/internal/preflight"
	"dicomsort/internal/runlock"
	"dicomsort/internal/services"
)

// splitArgs maps the positional arguments onto a source and a target. A
// single argument, or an empty source, selects the standard input path list.
func splitArgs(args []string) (source, target string) {
	if len(args) == 1 {
		return discovery.StdinSource, args[0]
	}
	source = args[0]
	if source != discovery.StdinSource {
		source = filepath.Clean(source)
	}
	return source, args[1]
}

func prepareConfig(ctx *commandContext, flags *sortFlags, fromStdin bool) (*config.Config, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := flags.apply(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ValidateSource(fromStdin); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSort(cmd *cobra.Command, ctx *commandContext, flags *sortFlags, args []string) error {
	source, targetArg := splitArgs(args)
	fromStdin := source == discovery.StdinSource

	cfg, err := prepareConfig(ctx, flags, fromStdin)
	if err != nil {
		return err
	}

	root, patternText := pattern.SplitTarget(targetArg, cfg.Sort.DefaultPattern)
	p, err := pattern.Compile(patternText)
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg, flags.verbose)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	runCtx := services.WithRunID(cmd.Context(), uuid.NewString())
	logging.WithContext(runCtx, logger).Debug("configuration resolved",
		logging.String("config_path", ctx.configPath),
		logging.String("source", source),
		logging.String("target_root", root),
	)

	if err := preflight.Err(preflight.RunAll(cfg, source, root)); err != nil {
		return err
	}

	lock, err := runlock.Acquire(root)
	if err != nil {
		return err
	}
	defer lock.Release()

	opts := placement.NewOptions(cfg, source, root, p)
	if cfg.Sort.Compress {
		zw, err := archive.CreateZip(cfg.ArchivePath(root))
		if err != nil {
			return err
		}
		opts.Archive = zw
	}

	progress := newProgress(cmd.ErrOrStderr(), !flags.verbose)
	opts.Observer = progress.Observe
	if opts.DeleteSource && !opts.Force {
		prompt := newDeletionPrompt(cmd.InOrStdin(), cmd.ErrOrStderr())
		opts.Confirm = progress.Pause(prompt)
	}

	engine, err := placement.New(opts, newResolver(logger), logger)
	if err != nil {
		if opts.Archive != nil {
			_ = opts.Archive.Finalize()
		}
		return err
	}
	summary, runErr := engine.Run(runCtx, discovery.Sources(runCtx, source, cmd.InOrStdin()))
	progress.Finish()

	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary, cfg))
	return runResult(summary, runErr)
}

// runResult turns a finished run into the process status. Per-file failures
// tolerated under keep-going and deletion failures still exit non-zero.
func runResult(summary placement.Summary, runErr error) error {
	switch {
	case runErr != nil:
		return runErr
	case summary.Failed > 0:
		return services.Wrap(services.ErrIO, "sort", "finish",
			fmt.Sprintf("%d of %d files failed", summary.Failed, summary.Total()), nil)
	case summary.DeletionFailures > 0:
		return services.Wrap(services.ErrSourceDeletion, "sort", "delete sources",
			fmt.Sprintf("%d source entries could not be removed", summary.DeletionFailures), nil)
	}
	return nil
}
