// Package logging assembles the structured slog loggers used by dicomsort.
//
// It owns the console and JSON handlers, maps configured level names onto slog
// levels, and exposes context-aware helpers so the placement engine can tag
// every line with the run id and the source file being processed. Errors that
// carry remediation hints are logged with an error_hint field next to the
// error itself.
package logging
