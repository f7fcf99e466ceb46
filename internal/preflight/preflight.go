package preflight

import (
	"strings"

	"golang.org/x/sys/unix"

	"dicomsort/internal/config"
	"dicomsort/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that apply to a sorting run. An empty source
// means the source list comes from standard input and is not checked here.
func RunAll(cfg *config.Config, source, targetRoot string) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result

	if source != "" {
		mode := uint32(unix.R_OK | unix.X_OK)
		if cfg.Sort.DeleteSource || cfg.Sort.Action == config.ActionMove {
			mode |= unix.W_OK
		}
		results = append(results, CheckDirectoryAccess("Source directory", source, mode))
	}

	if cfg.WritesLoose() {
		results = append(results, CheckCreatable("Target directory", targetRoot))
	}

	if cfg.Sort.Compress {
		results = append(results, CheckAbsent("Archive", cfg.ArchivePath(targetRoot)))
	}
	return results
}

// Err folds failed results into a single error, or returns nil when every
// check passed. Failures are marked services.ErrIO.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r.Name+": "+r.Detail)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.WithHint(
		services.Wrap(services.ErrIO, "preflight", "check", strings.Join(failed, "; "), nil),
		"fix the permissions or paths above and rerun",
	)
}
