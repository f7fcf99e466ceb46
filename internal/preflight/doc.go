// Package preflight checks, before any file is touched, that the source tree
// can be read and that the target root (or the directory that will hold it)
// can be written.
//
// Checks use access(2) through golang.org/x/sys/unix so they reflect the
// effective permissions of the running user rather than mode bits alone.
package preflight
