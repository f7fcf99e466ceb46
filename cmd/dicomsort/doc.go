// Package main hosts the dicomsort CLI entrypoint and command graph.
//
// The root command sorts a source tree (or a newline-delimited path list on
// standard input) into "targetDir/<pattern>", where the pattern names DICOM
// tags to substitute into directory and file names. Subcommands scaffold the
// configuration file and run the network self-test.
//
// Keep this package lean: sorting behavior lives in internal/placement and
// its collaborators. This package resolves configuration, applies flags, and
// renders progress and the run summary.
package main
