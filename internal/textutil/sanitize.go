package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SegmentReplacement is substituted for every unsafe character in a path segment.
const SegmentReplacement = "_"

// unsafeSegmentChars lists the printable characters that may not appear in a
// rendered path segment. Control characters are handled separately.
const unsafeSegmentChars = `/\:*?"<>|`

// SanitizeSegment makes a single rendered path segment safe for use as a
// directory or file name. Separators, the characters : * ? " < > | and
// control characters become underscores. The segments "." and ".." are
// replaced as a whole so they can never address a parent directory.
func SanitizeSegment(segment string) string {
	if segment == "" {
		return ""
	}
	segment = norm.NFC.String(segment)
	var b strings.Builder
	b.Grow(len(segment))
	for _, r := range segment {
		switch {
		case r < 0x20 || r == 0x7f:
			b.WriteString(SegmentReplacement)
		case strings.ContainsRune(unsafeSegmentChars, r):
			b.WriteString(SegmentReplacement)
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	switch out {
	case ".":
		return SegmentReplacement
	case "..":
		return SegmentReplacement + SegmentReplacement
	}
	return out
}
