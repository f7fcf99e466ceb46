package metadata

import "context"

// TagMapping maps tag keywords (e.g. PatientName) to rendered string values.
// It lives only while one file is being placed.
type TagMapping map[string]string

// Resolver reads the metadata of a single source file. Implementations return
// an error marked with services.ErrNotRecognized when the file is not a
// recognized metadata file; any other error is an I/O failure.
type Resolver interface {
	Resolve(ctx context.Context, path string) (TagMapping, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, path string) (TagMapping, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, path string) (TagMapping, error) {
	return f(ctx, path)
}
