// Package services defines shared utilities consumed by the sorting engine
// and its collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, source file paths, and
//     placement stages for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into the reason taxonomy used for organized/skipped/failed accounting.
//   - Hint helpers so fatal errors can carry a concrete next step for the user.
//
// Use these helpers when wiring new placement logic so error handling and
// observability stay uniform across the run.
package services
