// Package textutil provides small text helpers used by the path renderer.
//
// SanitizeSegment keeps rendered path segments from introducing separators,
// reserved characters, or parent-directory references.
package textutil
