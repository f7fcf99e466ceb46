package pattern

import (
	"strings"

	"dicomsort/internal/services"
)

// FieldMarker introduces a tag reference inside a segment.
const FieldMarker = '%'

// TokenKind distinguishes literal text from tag references.
type TokenKind int

const (
	TokenLiteral TokenKind = iota
	TokenField
)

// Token is a literal run or a tag reference within a segment.
type Token struct {
	Kind TokenKind
	// Text holds the literal text or, for fields, the tag name.
	Text string
}

// SegmentKind tags a segment as a directory level or the filename.
type SegmentKind int

const (
	DirectorySegment SegmentKind = iota
	FilenameSegment
)

func (k SegmentKind) String() string {
	if k == FilenameSegment {
		return "filename"
	}
	return "directory"
}

// Segment is one slash separated component of a pattern.
type Segment struct {
	Kind   SegmentKind
	Tokens []Token
}

// Fields returns the tag names referenced by the segment in order.
func (s Segment) Fields() []string {
	var names []string
	for _, tok := range s.Tokens {
		if tok.Kind == TokenField {
			names = append(names, tok.Text)
		}
	}
	return names
}

// Pattern is an immutable compiled target pattern. The zero value is not
// usable; obtain one from Compile.
type Pattern struct {
	source      string
	directories []Segment
	filename    Segment
}

// Compile parses a pattern string. It fails with an ErrInvalidPattern marked
// error when the pattern is blank or its filename template is blank. Empty
// directory segments (from leading or repeated slashes) are dropped, matching
// path join semantics.
func Compile(source string) (*Pattern, error) {
	if strings.TrimSpace(source) == "" {
		return nil, services.WithHint(
			services.Wrap(services.ErrInvalidPattern, "pattern", "compile", "pattern is empty", nil),
			"pass a target such as sorted/%PatientName/%StudyDate/%InstanceNumber.dcm",
		)
	}
	parts := strings.Split(source, "/")
	last := parts[len(parts)-1]
	if strings.TrimSpace(last) == "" {
		return nil, services.WithHint(
			services.Wrap(services.ErrInvalidPattern, "pattern", "compile", "filename template is empty", nil),
			"end the pattern with a filename template, e.g. %InstanceNumber.dcm",
		)
	}

	p := &Pattern{source: source}
	for _, part := range parts[:len(parts)-1] {
		if part == "" {
			continue
		}
		p.directories = append(p.directories, Segment{Kind: DirectorySegment, Tokens: tokenize(part)})
	}
	p.filename = Segment{Kind: FilenameSegment, Tokens: tokenize(last)}
	return p, nil
}

// MustCompile is like Compile but panics on error. Intended for constants.
func MustCompile(source string) *Pattern {
	p, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source text the pattern was compiled from.
func (p *Pattern) String() string {
	return p.source
}

// Directories returns the directory templates in nesting order.
func (p *Pattern) Directories() []Segment {
	out := make([]Segment, len(p.directories))
	copy(out, p.directories)
	return out
}

// Filename returns the filename template.
func (p *Pattern) Filename() Segment {
	return p.filename
}

// Segments returns all segments with the filename template last.
func (p *Pattern) Segments() []Segment {
	out := make([]Segment, 0, len(p.directories)+1)
	out = append(out, p.directories...)
	return append(out, p.filename)
}

// Fields returns the distinct tag names referenced anywhere in the pattern,
// in first-use order.
func (p *Pattern) Fields() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, seg := range p.Segments() {
		for _, name := range seg.Fields() {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

func tokenize(segment string) []Token {
	var tokens []Token
	var literal strings.Builder
	flush := func() {
		if literal.Len() == 0 {
			return
		}
		tokens = append(tokens, Token{Kind: TokenLiteral, Text: literal.String()})
		literal.Reset()
	}

	for i := 0; i < len(segment); {
		c := segment[i]
		if c != FieldMarker {
			literal.WriteByte(c)
			i++
			continue
		}
		if i+1 < len(segment) && segment[i+1] == FieldMarker {
			literal.WriteByte(FieldMarker)
			i += 2
			continue
		}
		j := i + 1
		if j >= len(segment) || !isLetter(segment[j]) {
			// A bare marker is literal text.
			literal.WriteByte(c)
			i++
			continue
		}
		for j < len(segment) && isIdentifier(segment[j]) {
			j++
		}
		flush()
		tokens = append(tokens, Token{Kind: TokenField, Text: segment[i+1 : j]})
		i = j
	}
	flush()
	return tokens
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentifier(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9')
}
