package testsupport

import (
	"path/filepath"
	"testing"

	"dicomsort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a normalized config whose log and self-test directories
// live under a per-test temp directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.SelfTest.WorkDir = filepath.Join(base, "selftest")

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.Normalize(); err != nil {
		t.Fatalf("normalize test config: %v", err)
	}
	return builder.cfg
}

// WithAction sets the placement action.
func WithAction(action config.Action) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sort.Action = action
	}
}

// WithKeepGoing enables the keep-going policy.
func WithKeepGoing() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sort.KeepGoing = true
	}
}

// WithCompress enables archive output; keepLoose also writes loose files.
func WithCompress(keepLoose bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sort.Compress = true
		b.cfg.Archive.KeepLoose = keepLoose
	}
}

// WithForceDelete enables source deletion without confirmation.
func WithForceDelete() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sort.ForceDelete = true
	}
}

// WithLogDir routes file logging into the test temp directory.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Dir = filepath.Join(b.baseDir, "logs")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.SelfTest.WorkDir)
}
