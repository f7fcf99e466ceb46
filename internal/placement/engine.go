package placement

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"dicomsort/internal/archive"
	"dicomsort/internal/config"
	"dicomsort/internal/fileutil"
	"dicomsort/internal/logging"
	"dicomsort/internal/metadata"
	"dicomsort/internal/naming"
	"dicomsort/internal/pattern"
	"dicomsort/internal/services"
)

const (
	stageResolve = "resolve"
	stageRender  = "render"
	stagePlace   = "place"
)

// Engine places source files under a target root.
type Engine struct {
	opts      Options
	resolver  metadata.Resolver
	logger    *slog.Logger
	targetAbs string
	// archiveAbs is the archive file, which may sit inside the source tree.
	archiveAbs string
}

// runState is everything one Run mutates.
type runState struct {
	index   *naming.Index
	summary Summary
	ledgers map[string]*dirLedger
}

// dirLedger tracks the files placed from one source directory. A blocked
// directory had a file that was not placed and is never deleted.
type dirLedger struct {
	placed  []string
	blocked bool
}

// New validates opts and constructs an Engine.
func New(opts Options, resolver metadata.Resolver, logger *slog.Logger) (*Engine, error) {
	if resolver == nil {
		return nil, optionError("metadata resolver is required")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	targetAbs, err := filepath.Abs(opts.TargetRoot)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "placement", "resolve target root", opts.TargetRoot, err)
	}
	var archiveAbs string
	if opts.Archive != nil {
		if archiveAbs, err = filepath.Abs(opts.Archive.Path()); err != nil {
			return nil, services.Wrap(services.ErrIO, "placement", "resolve archive path", opts.Archive.Path(), err)
		}
	}
	return &Engine{
		opts:       opts,
		resolver:   resolver,
		logger:     logging.NewComponentLogger(logger, "placement"),
		targetAbs:  targetAbs,
		archiveAbs: archiveAbs,
	}, nil
}

// Run drains sources and returns the accumulated Summary. A non-nil error
// means the run aborted; the Summary still reflects the work done so far.
// Source deletion only happens after a run that did not abort.
func (e *Engine) Run(ctx context.Context, sources iter.Seq2[string, error]) (Summary, error) {
	st := &runState{
		index:   naming.NewIndex(),
		summary: newSummary(),
		ledgers: make(map[string]*dirLedger),
	}
	if e.opts.Archive != nil {
		st.summary.ArchivePath = e.opts.Archive.Path()
	}
	logger := logging.WithContext(ctx, e.logger)
	logger.Info("sort started",
		logging.String("target_root", e.opts.TargetRoot),
		logging.String("pattern", e.opts.Pattern.String()),
		logging.String("action", string(e.opts.Action)),
		logging.Any("fields", e.opts.Pattern.Fields()),
		logging.Bool("keep_going", e.opts.KeepGoing),
		logging.Bool("archive", e.opts.Archive != nil),
	)
	started := time.Now()

	var runErr error
	for src, err := range sources {
		if ctxErr := ctx.Err(); ctxErr != nil {
			runErr = ctxErr
			break
		}
		var outcome Outcome
		if err != nil {
			outcome = Outcome{Source: src, Status: StatusFailed, Reason: services.Classify(err), Err: err}
		} else {
			if e.insideOutput(src) {
				logger.Debug("skipping file inside the output", logging.String(logging.FieldSourceFile, src))
				continue
			}
			outcome = e.place(ctx, st, src)
		}
		st.summary.record(outcome)
		st.note(outcome, e.opts.Action == config.ActionMove)
		e.report(ctx, outcome)
		if outcome.Status == StatusFailed && (!e.opts.KeepGoing || services.IsFatal(outcome.Err) || errors.Is(outcome.Err, context.Canceled)) {
			runErr = outcome.Err
			break
		}
	}

	if e.opts.Archive != nil {
		st.summary.ArchiveEntries = e.opts.Archive.Entries()
		if err := e.opts.Archive.Finalize(); err != nil {
			logging.ErrorWithContext(logger, "archive finalize failed", "archive_finalize", logging.ErrorAttrs(err)...)
			if runErr == nil {
				runErr = err
			}
		}
	}

	if runErr != nil {
		st.summary.Aborted = true
		logging.ErrorWithContext(logger, "sort aborted", "run_aborted",
			append(logging.ErrorAttrs(runErr),
				logging.Int("organized", st.summary.Organized),
				logging.Int("skipped", st.summary.Skipped),
				logging.Int("failed", st.summary.Failed),
			)...,
		)
		return st.summary, runErr
	}

	if e.opts.DeleteSource {
		e.deleteSources(ctx, st)
	}

	logger.Info("sort complete",
		logging.Int("organized", st.summary.Organized),
		logging.Int("skipped", st.summary.Skipped),
		logging.Int("failed", st.summary.Failed),
		logging.Int("suffixed", st.summary.Suffixed),
		logging.Int64("bytes_placed", st.summary.BytesPlaced),
		logging.Duration("elapsed", time.Since(started)),
	)
	return st.summary, nil
}

// place advances one source file through resolve, render, path resolution,
// and the configured action.
func (e *Engine) place(ctx context.Context, st *runState, src string) Outcome {
	ctx = services.WithSourcePath(ctx, src)

	tags, err := e.resolver.Resolve(services.WithStage(ctx, stageResolve), src)
	if err != nil {
		return e.settle(src, "", err)
	}

	rel := pattern.Render(e.opts.Pattern, tags, e.opts.Render).Rel()
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		err := services.WithHint(
			services.Wrap(services.ErrUnsafeTarget, stageRender, "contain target", rel, nil),
			"a tag value leaves the target root; run without --unsafe",
		)
		return e.settle(src, rel, err)
	}

	final := st.index.Resolve(rel)
	if final != rel {
		st.summary.Suffixed++
	}

	written, err := e.write(services.WithStage(ctx, stagePlace), st, src, final)
	if err != nil {
		return e.settle(src, final, err)
	}
	return Outcome{Source: src, Status: StatusOrganized, Target: final, Bytes: written}
}

// write performs the loose placement and/or archive append for one file.
func (e *Engine) write(ctx context.Context, st *runState, src, final string) (int64, error) {
	var written int64
	if e.opts.WriteLoose {
		dst := filepath.Join(e.opts.TargetRoot, filepath.FromSlash(final))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return 0, services.Wrap(services.ErrIO, stagePlace, "create directory", filepath.Dir(dst), err)
		}
		switch e.opts.Action {
		case config.ActionSymlink:
			if err := fileutil.SymlinkExclusive(src, dst); err != nil {
				return 0, err
			}
		default:
			n, err := fileutil.CopyExclusive(src, dst)
			if err != nil {
				return 0, err
			}
			written = n
		}
	}

	if e.opts.Archive != nil {
		n, err := archive.AppendFile(e.opts.Archive, final, src)
		if err != nil {
			return 0, err
		}
		if !e.opts.WriteLoose {
			written = n
		}
	}

	if e.opts.Action == config.ActionMove {
		if err := os.Remove(src); err != nil {
			st.summary.DeletionFailures++
			logging.WarnWithContext(logging.WithContext(ctx, e.logger), "source removal after move failed", "source_deletion",
				append(logging.ErrorAttrs(services.Wrap(services.ErrSourceDeletion, stagePlace, "remove source", src, err)),
					logging.String(logging.FieldImpact, "source file left in place"),
				)...,
			)
		} else {
			st.summary.SourcesDeleted++
		}
	}
	return written, nil
}

// settle turns a placement error into an Outcome according to the reason
// taxonomy and the keep-going policy.
func (e *Engine) settle(src, target string, err error) Outcome {
	reason := services.Classify(err)
	status := StatusFailed
	switch {
	case reason == services.ReasonNotRecognized:
		status = StatusSkipped
	case reason == services.ReasonPreexistingTarget && e.opts.KeepGoing:
		status = StatusSkipped
	}
	if reason == services.ReasonPreexistingTarget && services.Hint(err) == "" {
		err = services.WithHint(err, "pattern is probably not unique or the target was sorted before; use --keep-going to skip")
	}
	return Outcome{Source: src, Status: status, Target: target, Reason: reason, Err: err}
}

func (e *Engine) report(ctx context.Context, o Outcome) {
	if e.opts.Observer != nil {
		e.opts.Observer(o)
	}
	logger := logging.WithContext(services.WithSourcePath(ctx, o.Source), e.logger)
	switch {
	case o.Status == StatusOrganized:
		logger.Debug("file organized", logging.String("target", o.Target), logging.Int64("bytes", o.Bytes))
	case o.Reason == services.ReasonNotRecognized:
		logger.Debug("not a recognized metadata file")
	case o.Status == StatusSkipped:
		logging.WarnWithContext(logger, "target already exists", string(o.Reason),
			append(logging.ErrorAttrs(o.Err),
				logging.String("target", o.Target),
				logging.String(logging.FieldImpact, "file skipped"),
			)...,
		)
	default:
		logging.ErrorWithContext(logger, "file placement failed", string(o.Reason),
			append(logging.ErrorAttrs(o.Err), logging.String("target", o.Target))...,
		)
	}
}

// insideOutput reports whether src is this run's own output: a file under
// the loose target root or the archive itself. That happens when the target
// is nested in the source tree.
func (e *Engine) insideOutput(src string) bool {
	abs, err := filepath.Abs(src)
	if err != nil {
		return false
	}
	if e.archiveAbs != "" && abs == e.archiveAbs {
		return true
	}
	if !e.opts.WriteLoose {
		return false
	}
	rel, err := filepath.Rel(e.targetAbs, abs)
	return err == nil && filepath.IsLocal(rel)
}

func (st *runState) note(o Outcome, moved bool) {
	if o.Source == "" {
		return
	}
	dir := filepath.Dir(o.Source)
	ledger, ok := st.ledgers[dir]
	if !ok {
		ledger = &dirLedger{}
		st.ledgers[dir] = ledger
	}
	switch {
	case o.Status == StatusOrganized:
		if !moved {
			ledger.placed = append(ledger.placed, o.Source)
		}
	case o.Reason == services.ReasonNotRecognized:
		// stays behind in the source directory without blocking deletion
	default:
		ledger.blocked = true
	}
}
