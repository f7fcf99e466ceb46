package placement

import (
	"context"
	"strings"

	"dicomsort/internal/archive"
	"dicomsort/internal/config"
	"dicomsort/internal/pattern"
	"dicomsort/internal/services"
)

// DeletionPlan describes the source removal awaiting confirmation.
type DeletionPlan struct {
	Dirs  []string
	Files int
}

// Confirmer asks whether the planned source removal may proceed.
type Confirmer func(ctx context.Context, plan DeletionPlan) (bool, error)

// Observer is notified once per processed source file, in order.
type Observer func(Outcome)

// Options configures an Engine.
type Options struct {
	TargetRoot string
	// SourceRoot bounds empty-directory pruning after source deletion. It is
	// empty when sources come from a path list.
	SourceRoot string
	Pattern    *pattern.Pattern
	Render     pattern.RenderOptions
	Action     config.Action
	KeepGoing  bool
	// WriteLoose places files under TargetRoot. It may only be false when
	// Archive is set.
	WriteLoose   bool
	Archive      archive.Writer
	DeleteSource bool
	Force        bool
	Confirm      Confirmer
	Observer     Observer
}

// NewOptions maps a validated config onto engine options. Archive, Confirm,
// and Observer are left for the caller to wire.
func NewOptions(cfg *config.Config, sourceRoot, targetRoot string, p *pattern.Pattern) Options {
	return Options{
		TargetRoot: targetRoot,
		SourceRoot: sourceRoot,
		Pattern:    p,
		Render: pattern.RenderOptions{
			Unsafe:       cfg.Sort.Unsafe,
			TruncateTime: cfg.Sort.TruncateTime,
		},
		Action:       cfg.Sort.Action,
		KeepGoing:    cfg.Sort.KeepGoing,
		WriteLoose:   cfg.WritesLoose(),
		DeleteSource: cfg.Sort.DeleteSource || cfg.Sort.ForceDelete,
		Force:        cfg.Sort.ForceDelete,
	}
}

func (o Options) validate() error {
	switch {
	case o.Pattern == nil:
		return optionError("pattern is required")
	case strings.TrimSpace(o.TargetRoot) == "":
		return optionError("target root is required")
	case !o.WriteLoose && o.Archive == nil:
		return optionError("nothing to write: loose output disabled without an archive")
	}
	switch o.Action {
	case config.ActionCopy, config.ActionMove:
	case config.ActionSymlink:
		if o.Archive != nil {
			return optionError("an archive cannot hold symbolic links")
		}
		if o.DeleteSource {
			return optionError("deleting sources would leave dangling symbolic links")
		}
	default:
		return optionError("unsupported action " + string(o.Action))
	}
	if o.Action == config.ActionMove && !o.WriteLoose {
		return optionError("move requires loose output")
	}
	if o.DeleteSource && !o.Force && o.Confirm == nil {
		return optionError("source deletion needs a confirmation prompt or force")
	}
	return nil
}

func optionError(msg string) error {
	return services.Wrap(services.ErrConfiguration, "placement", "options", msg, nil)
}
