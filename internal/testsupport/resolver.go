package testsupport

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"dicomsort/internal/metadata"
	"dicomsort/internal/services"
)

// Resolver is a metadata.Resolver backed by an in-memory table. Paths that
// were never registered resolve as not recognized.
type Resolver struct {
	mu    sync.Mutex
	tags  map[string]metadata.TagMapping
	errs  map[string]error
	calls []string
}

// NewResolver returns an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{
		tags: make(map[string]metadata.TagMapping),
		errs: make(map[string]error),
	}
}

// Add registers tags for path.
func (r *Resolver) Add(path string, tags metadata.TagMapping) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[filepath.Clean(path)] = tags
}

// Fail makes path resolve with err.
func (r *Resolver) Fail(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[filepath.Clean(path)] = err
}

// WriteSource creates root/rel with rel as its content, registers tags for it,
// and returns the absolute path. A nil tags mapping leaves the file
// unregistered so it resolves as not recognized.
func (r *Resolver) WriteSource(t testing.TB, root, rel string, tags metadata.TagMapping) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	WriteContent(t, path, rel)
	if tags != nil {
		r.Add(path, tags)
	}
	return path
}

// Calls returns the paths resolved so far, in call order.
func (r *Resolver) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Resolve implements metadata.Resolver.
func (r *Resolver) Resolve(ctx context.Context, path string) (metadata.TagMapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := filepath.Clean(path)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, key)
	if err, ok := r.errs[key]; ok {
		return nil, err
	}
	tags, ok := r.tags[key]
	if !ok {
		return nil, services.Wrap(services.ErrNotRecognized, "metadata", "lookup", path, nil)
	}
	out := make(metadata.TagMapping, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out, nil
}
