package main

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"dicomsort/internal/placement"
)

// progress draws a spinner with a running file count while sorting. It is
// inert unless the writer is a terminal.
type progress struct {
	bar *progressbar.ProgressBar
}

func newProgress(w io.Writer, enabled bool) *progress {
	if !enabled || !isTerminal(w) {
		return &progress{}
	}
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Sorting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &progress{bar: bar}
}

// Observe implements placement.Observer.
func (p *progress) Observe(placement.Outcome) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

// Finish clears the spinner. Later calls are no-ops.
func (p *progress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

// Pause wraps a confirmer so the spinner is cleared before it prompts.
// Sorting is over by the time deletion is confirmed.
func (p *progress) Pause(confirm placement.Confirmer) placement.Confirmer {
	return func(ctx context.Context, plan placement.DeletionPlan) (bool, error) {
		p.Finish()
		return confirm(ctx, plan)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
