package pattern

import (
	"path"
	"strings"

	"dicomsort/internal/textutil"
)

// RenderOptions tunes how tag values become path text.
type RenderOptions struct {
	// Unsafe skips segment sanitization entirely.
	Unsafe bool
	// TruncateTime drops an all-zero fractional part from *Time tag values.
	TruncateTime bool
}

// RenderedPath is a pattern rendered for one file. Segments are already
// sanitized (unless rendered in unsafe mode).
type RenderedPath struct {
	Dirs     []string
	Filename string
}

// Rel joins the rendered segments into a slash separated relative path.
// Empty directory segments collapse under path join semantics.
func (r RenderedPath) Rel() string {
	parts := make([]string, 0, len(r.Dirs)+1)
	parts = append(parts, r.Dirs...)
	parts = append(parts, r.Filename)
	return path.Join(parts...)
}

// emptyFilename stands in for a filename template that rendered to nothing.
const emptyFilename = "_"

// Render substitutes tags into every segment of p. Missing tags render as
// the empty string; rendering never fails.
func Render(p *Pattern, tags map[string]string, opts RenderOptions) RenderedPath {
	out := RenderedPath{Dirs: make([]string, 0, len(p.directories))}
	for _, seg := range p.directories {
		out.Dirs = append(out.Dirs, renderSegment(seg, tags, opts))
	}
	out.Filename = renderSegment(p.filename, tags, opts)
	if strings.TrimSpace(out.Filename) == "" {
		out.Filename = emptyFilename
	}
	return out
}

func renderSegment(seg Segment, tags map[string]string, opts RenderOptions) string {
	var b strings.Builder
	for _, tok := range seg.Tokens {
		switch tok.Kind {
		case TokenLiteral:
			b.WriteString(tok.Text)
		case TokenField:
			b.WriteString(fieldValue(tok.Text, tags, opts))
		}
	}
	if opts.Unsafe {
		return b.String()
	}
	return textutil.SanitizeSegment(b.String())
}

func fieldValue(name string, tags map[string]string, opts RenderOptions) string {
	value, ok := tags[name]
	if !ok {
		return ""
	}
	if opts.TruncateTime && strings.HasSuffix(name, "Time") {
		value = truncateZeroFraction(value)
	}
	return value
}

// truncateZeroFraction turns "101500.000000" into "101500".
func truncateZeroFraction(value string) string {
	dot := strings.IndexByte(value, '.')
	if dot < 0 {
		return value
	}
	if value[dot+1:] == "000000" {
		return value[:dot]
	}
	return value
}
