// Package pattern compiles user supplied target patterns and renders them into
// relative paths from per-file metadata.
//
// A pattern is a slash separated list of segments. Every segment but the last
// names a directory level; the last is the filename template. Inside a segment
// `%Name` substitutes the metadata tag called Name (a letter followed by
// letters or digits), `%%` is a literal percent sign, and everything else is
// copied verbatim.
//
// Rendering is lenient: a tag that is missing from the metadata renders as the
// empty string. Each rendered segment is sanitized on its own so metadata can
// never add separators or parent references, unless the caller opts out with
// RenderOptions.Unsafe.
package pattern
