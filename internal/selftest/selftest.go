// Package selftest downloads the public sample DICOM set and sorts it with
// the self-test pattern, failing unless files were organized without errors.
// Downloaded data is kept in the work directory and reused by later runs.
package selftest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hashicorp/go-getter"

	"dicomsort/internal/config"
	"dicomsort/internal/discovery"
	"dicomsort/internal/fileutil"
	"dicomsort/internal/logging"
	"dicomsort/internal/metadata"
	"dicomsort/internal/pattern"
	"dicomsort/internal/placement"
	"dicomsort/internal/services"
)

const (
	dataDirName   = "data"
	outputDirName = "output"
	completeMark  = "data.complete"
)

// Fetcher retrieves src into the directory dst, unpacking archives.
type Fetcher interface {
	Fetch(ctx context.Context, src, dst string) error
}

// GetterFetcher fetches with hashicorp/go-getter, which detects the source
// type and extracts zip archives into the destination directory.
type GetterFetcher struct{}

// Fetch implements Fetcher.
func (GetterFetcher) Fetch(ctx context.Context, src, dst string) error {
	client := &getter.Client{
		Ctx:     ctx,
		Src:     src,
		Dst:     dst,
		Mode:    getter.ClientModeDir,
		Getters: getter.Getters,
	}
	return client.Get()
}

// Report describes a finished self-test.
type Report struct {
	DataDir    string
	OutputDir  string
	Downloaded bool
	Summary    placement.Summary
}

// Runner executes the self-test.
type Runner struct {
	cfg      *config.Config
	fetcher  Fetcher
	resolver metadata.Resolver
	logger   *slog.Logger
}

// NewRunner constructs a Runner. A nil fetcher uses GetterFetcher.
func NewRunner(cfg *config.Config, fetcher Fetcher, resolver metadata.Resolver, logger *slog.Logger) *Runner {
	if fetcher == nil {
		fetcher = GetterFetcher{}
	}
	return &Runner{
		cfg:      cfg,
		fetcher:  fetcher,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "selftest"),
	}
}

// Run fetches the sample data when needed and sorts it into a fresh output
// directory. Sort options other than the action and deletion apply as
// configured.
func (r *Runner) Run(ctx context.Context, observer placement.Observer) (Report, error) {
	workDir := r.cfg.SelfTest.WorkDir
	report := Report{
		DataDir:   filepath.Join(workDir, dataDirName),
		OutputDir: filepath.Join(workDir, outputDirName),
	}
	logger := logging.WithContext(ctx, r.logger)

	p, err := pattern.Compile(r.cfg.SelfTest.Pattern)
	if err != nil {
		return report, err
	}

	downloaded, err := r.ensureData(ctx, report.DataDir)
	if err != nil {
		return report, err
	}
	report.Downloaded = downloaded

	if err := os.RemoveAll(report.OutputDir); err != nil {
		return report, services.Wrap(services.ErrIO, "selftest", "clear output", report.OutputDir, err)
	}

	opts := placement.NewOptions(r.cfg, report.DataDir, report.OutputDir, p)
	opts.Action = config.ActionCopy
	opts.WriteLoose = true
	opts.DeleteSource = false
	opts.Force = false
	opts.Observer = observer
	engine, err := placement.New(opts, r.resolver, r.logger)
	if err != nil {
		return report, err
	}

	report.Summary, err = engine.Run(ctx, discovery.Walk(ctx, report.DataDir))
	if err != nil {
		return report, err
	}
	switch {
	case report.Summary.Organized == 0:
		return report, services.WithHint(
			services.Wrap(services.ErrIO, "selftest", "verify", "no files were organized", nil),
			"remove "+report.DataDir+" to force a fresh download",
		)
	case report.Summary.Failed > 0:
		return report, services.Wrap(services.ErrIO, "selftest", "verify", "some files failed to sort", nil)
	}
	logger.Info("self-test passed",
		logging.Int("organized", report.Summary.Organized),
		logging.Int("skipped", report.Summary.Skipped),
		logging.String("output", report.OutputDir),
	)
	return report, nil
}

// ensureData fetches the sample set into dataDir unless a completed download
// is already there. Downloads land in a scratch directory and the completion
// marker is written last, so an interrupted fetch is never reused.
func (r *Runner) ensureData(ctx context.Context, dataDir string) (bool, error) {
	mark := filepath.Join(filepath.Dir(dataDir), completeMark)
	done, err := fileutil.Exists(mark)
	if err != nil {
		return false, services.Wrap(services.ErrIO, "selftest", "stat sample data", mark, err)
	}
	if done {
		r.logger.Info("reusing downloaded sample data", logging.String("path", dataDir))
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(dataDir), 0o755); err != nil {
		return false, services.Wrap(services.ErrIO, "selftest", "create work dir", filepath.Dir(dataDir), err)
	}
	scratch := dataDir + ".partial-" + uuid.NewString()
	defer os.RemoveAll(scratch)

	r.logger.Info("downloading sample data",
		logging.String("url", r.cfg.SelfTest.DataURL),
		logging.String("destination", dataDir),
	)
	if err := r.fetcher.Fetch(ctx, r.cfg.SelfTest.DataURL, scratch); err != nil {
		return false, services.WithHint(
			services.Wrap(services.ErrIO, "selftest", "download", r.cfg.SelfTest.DataURL, err),
			"check network access or set self_test.data_url",
		)
	}
	if err := os.RemoveAll(dataDir); err != nil {
		return false, services.Wrap(services.ErrIO, "selftest", "clear stale data", dataDir, err)
	}
	if err := os.Rename(scratch, dataDir); err != nil {
		return false, services.Wrap(services.ErrIO, "selftest", "install sample data", dataDir, err)
	}
	if err := os.WriteFile(mark, nil, 0o644); err != nil {
		return false, services.Wrap(services.ErrIO, "selftest", "mark download", mark, err)
	}
	return true, nil
}
