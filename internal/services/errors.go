package services

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrNotRecognized     = errors.New("not a recognized metadata file")
	ErrInvalidPattern    = errors.New("invalid pattern")
	ErrPreexistingTarget = errors.New("target already exists")
	ErrSourceDeletion    = errors.New("source deletion failed")
	ErrIO                = errors.New("i/o failure")
	ErrUnsafeTarget      = errors.New("target escapes root")
	ErrConfiguration     = errors.New("configuration error")
)

// Reason is the counting taxonomy attached to a skipped or failed file.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonNotRecognized     Reason = "not_recognized"
	ReasonPreexistingTarget Reason = "preexisting_target"
	ReasonUnsafeTarget      Reason = "unsafe_target"
	ReasonIO                Reason = "io_error"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "%s: %s", marker.Error(), detail), marker)
	}
	return errors.Mark(errors.Newf("%s: %s", marker.Error(), detail), marker)
}

// WithHint attaches a user-facing remediation hint to err.
func WithHint(err error, hint string) error {
	if err == nil || strings.TrimSpace(hint) == "" {
		return err
	}
	return errors.WithHint(err, hint)
}

// Hint flattens every hint attached to err into a single line.
func Hint(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(errors.FlattenHints(err), "\n--\n", "; "))
}

// Classify maps an error onto the reason taxonomy used for run accounting.
// Errors without a known marker are treated as I/O failures.
func Classify(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrNotRecognized):
		return ReasonNotRecognized
	case errors.Is(err, ErrPreexistingTarget):
		return ReasonPreexistingTarget
	case errors.Is(err, ErrUnsafeTarget):
		return ReasonUnsafeTarget
	default:
		return ReasonIO
	}
}

// Is reports whether err carries marker. Markers attached by Wrap are only
// visible through this helper, not through the standard library errors.Is.
func Is(err, marker error) bool {
	return errors.Is(err, marker)
}

// IsFatal reports whether err must abort the whole run regardless of the
// keep-going policy.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidPattern) || errors.Is(err, ErrConfiguration)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "sort failure"
	}
	return strings.Join(parts, ": ")
}
