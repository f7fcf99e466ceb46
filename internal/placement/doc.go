// Package placement runs one sorting pass: every enumerated source file is
// resolved to tags, rendered through the compiled pattern, given a run-unique
// relative path, and then copied, linked, moved, and/or appended to the
// archive under the target root.
//
// All mutable run state (the used-path index, counters, and the per source
// directory deletion ledger) lives in a runState created by Run, so engines
// can be reused and tested in isolation. Files are processed strictly in
// enumeration order; suffix assignment depends on it.
//
// Outcomes follow the reason taxonomy in internal/services. Unrecognized
// files are always skipped. Pre-existing targets, unsafe targets, and I/O
// failures abort the run unless KeepGoing is set, in which case the first is
// counted as skipped and the others as failed. Whatever was placed before an
// abort stays placed, and an open archive is still finalized.
package placement
