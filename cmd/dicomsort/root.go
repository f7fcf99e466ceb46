package main

import (
	"github.com/spf13/cobra"

	"dicomsort/internal/config"
	"dicomsort/internal/services"
)

// sortFlags holds the command-line overrides for the [sort] and [archive]
// config sections. Boolean flags can only switch options on.
type sortFlags struct {
	compress     bool
	deleteSource bool
	forceDelete  bool
	keepGoing    bool
	verbose      bool
	symlink      bool
	move         bool
	selfTest     bool
	unsafe       bool
	truncateTime bool
	keepLoose    bool
	archivePath  string
}

func (f *sortFlags) apply(cfg *config.Config) error {
	switch {
	case f.symlink && f.move:
		return services.Wrap(services.ErrConfiguration, "cli", "flags", "--symlink and --move are mutually exclusive", nil)
	case f.symlink:
		cfg.Sort.Action = config.ActionSymlink
	case f.move:
		cfg.Sort.Action = config.ActionMove
	}
	cfg.Sort.Compress = cfg.Sort.Compress || f.compress
	cfg.Sort.DeleteSource = cfg.Sort.DeleteSource || f.deleteSource
	cfg.Sort.ForceDelete = cfg.Sort.ForceDelete || f.forceDelete
	cfg.Sort.KeepGoing = cfg.Sort.KeepGoing || f.keepGoing
	cfg.Sort.Unsafe = cfg.Sort.Unsafe || f.unsafe
	cfg.Sort.TruncateTime = cfg.Sort.TruncateTime || f.truncateTime
	cfg.Archive.KeepLoose = cfg.Archive.KeepLoose || f.keepLoose
	if f.archivePath != "" {
		cfg.Archive.Path = f.archivePath
	}
	return nil
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var flags sortFlags

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "dicomsort [flags] [sourceDir] targetDir/<pattern>",
		Short: "Sort DICOM files into a directory tree named by their tags",
		Long: `Sort DICOM files from sourceDir into targetDir, naming directories and
files from a pattern such as

  %PatientName/%StudyDescription-%StudyDate/%SeriesNumber-%InstanceNumber.dcm

Leading path segments without a '%' form the target directory. When the
target holds no pattern the configured default pattern is used. Pass an empty
sourceDir, or only the target, to read source paths from standard input.`,
		Args:          cobra.RangeArgs(0, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.selfTest {
				return runSelfTest(cmd, ctx, flags.verbose)
			}
			if len(args) == 0 {
				return cmd.Help()
			}
			return runSort(cmd, ctx, &flags, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	f := rootCmd.Flags()
	f.BoolVarP(&flags.compress, "compress", "z", false, "Write sorted files into a zip archive")
	f.BoolVarP(&flags.deleteSource, "delete", "d", false, "Delete source files after they are sorted")
	f.BoolVarP(&flags.forceDelete, "force", "f", false, "Delete source files without asking (implies --delete)")
	f.BoolVarP(&flags.keepGoing, "keep-going", "k", false, "Skip existing targets and continue after per-file failures")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	f.BoolVarP(&flags.symlink, "symlink", "s", false, "Create symbolic links instead of copying")
	f.BoolVarP(&flags.move, "move", "m", false, "Move files instead of copying")
	f.BoolVarP(&flags.selfTest, "test", "t", false, "Run the self-test against the public sample data")
	f.BoolVarP(&flags.unsafe, "unsafe", "u", false, "Keep tag values verbatim instead of sanitizing them")
	f.BoolVarP(&flags.truncateTime, "truncate-time", "r", false, "Drop all-zero fractional seconds from *Time tags")
	f.BoolVar(&flags.keepLoose, "keep-loose", false, "With --compress, also write the loose files")
	f.StringVar(&flags.archivePath, "archive", "", "Archive path for --compress (default <targetDir>.zip)")
	rootCmd.MarkFlagsMutuallyExclusive("symlink", "move")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newSelfTestCommand(ctx))

	return rootCmd
}
