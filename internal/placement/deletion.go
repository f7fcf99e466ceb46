package placement

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"dicomsort/internal/logging"
	"dicomsort/internal/services"
)

// deletionPlan lists the source directories whose every processed file was
// placed. Unrecognized files do not block a directory; they stay behind.
func (st *runState) deletionPlan() (DeletionPlan, map[string][]string) {
	var plan DeletionPlan
	files := make(map[string][]string)
	for dir, ledger := range st.ledgers {
		if ledger.blocked || len(ledger.placed) == 0 {
			continue
		}
		plan.Dirs = append(plan.Dirs, dir)
		plan.Files += len(ledger.placed)
		files[dir] = ledger.placed
	}
	sort.Strings(plan.Dirs)
	return plan, files
}

// deleteSources removes placed source files once the run has completed, then
// prunes directories left empty. Failures are counted and logged but never
// undo placements.
func (e *Engine) deleteSources(ctx context.Context, st *runState) {
	logger := logging.WithContext(ctx, e.logger)
	plan, files := st.deletionPlan()
	if len(plan.Dirs) == 0 {
		logger.Info("no source directories eligible for deletion")
		return
	}

	if !e.opts.Force {
		ok, err := e.opts.Confirm(ctx, plan)
		if err != nil {
			logging.WarnWithContext(logger, "deletion prompt failed", "source_deletion",
				append(logging.ErrorAttrs(err), logging.String(logging.FieldImpact, "sources kept"))...,
			)
		}
		if err != nil || !ok {
			st.summary.DeletionDeclined = true
			logger.Info("source deletion declined", logging.Int("directories", len(plan.Dirs)))
			return
		}
	}

	for _, dir := range plan.Dirs {
		for _, path := range files[dir] {
			if err := os.Remove(path); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				st.summary.DeletionFailures++
				logging.WarnWithContext(logger, "source file removal failed", "source_deletion",
					append(logging.ErrorAttrs(services.Wrap(services.ErrSourceDeletion, "delete", "remove file", path, err)),
						logging.String(logging.FieldImpact, "source file left in place"),
					)...,
				)
				continue
			}
			st.summary.SourcesDeleted++
		}
	}

	for _, dir := range e.pruneCandidates(plan.Dirs) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err != nil {
			st.summary.DeletionFailures++
			logging.WarnWithContext(logger, "source directory removal failed", "source_deletion",
				append(logging.ErrorAttrs(services.Wrap(services.ErrSourceDeletion, "delete", "remove directory", dir, err)),
					logging.String(logging.FieldImpact, "empty directory left in place"),
				)...,
			)
		}
	}
	logger.Info("source deletion complete",
		logging.Int("files_deleted", st.summary.SourcesDeleted),
		logging.Int("failures", st.summary.DeletionFailures),
	)
}

// pruneCandidates returns directories to try removing, deepest first. With a
// source root every directory below it (and the root itself) qualifies;
// otherwise only the directories files were taken from. Directories inside
// the target root are never candidates.
func (e *Engine) pruneCandidates(planned []string) []string {
	var dirs []string
	if e.opts.SourceRoot != "" {
		_ = filepath.WalkDir(e.opts.SourceRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if e.insideTarget(path) {
					return filepath.SkipDir
				}
				dirs = append(dirs, path)
			}
			return nil
		})
	} else {
		dirs = append(dirs, planned...)
	}
	slices.Reverse(dirs)
	return dirs
}

func (e *Engine) insideTarget(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return true
	}
	rel, err := filepath.Rel(e.targetAbs, abs)
	return err == nil && (rel == "." || filepath.IsLocal(rel))
}
