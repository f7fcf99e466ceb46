package discovery

import (
	"bufio"
	"context"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"dicomsort/internal/services"
)

// StdinSource is the source argument that selects a path list on standard input.
const StdinSource = ""

// Sources picks the enumeration for a source argument: the line list read
// from stdin when source is StdinSource, otherwise a walk of source.
func Sources(ctx context.Context, source string, stdin io.Reader) iter.Seq2[string, error] {
	if source == StdinSource {
		return Lines(ctx, stdin)
	}
	return Walk(ctx, source)
}

// Walk yields the regular files below root in lexical order. Symbolic links
// are yielded when they resolve to regular files; linked directories are not
// descended. An unreadable directory is yielded as an error for that path and
// the walk continues with its siblings unless the consumer stops.
func Walk(ctx context.Context, root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stopped := false
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if walkErr != nil {
				if !yield(path, services.Wrap(services.ErrIO, "discovery", "walk", path, walkErr)) {
					stopped = true
					return filepath.SkipAll
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !isRegular(path, d) {
				return nil
			}
			if !yield(path, nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield(root, err)
		}
	}
}

// Lines yields one source path per line of r, in input order. Surrounding
// whitespace is trimmed; blank lines and paths that are not regular files are
// dropped without being reported.
func Lines(ctx context.Context, r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			path := strings.TrimSpace(scanner.Text())
			if path == "" {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if !yield(path, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", services.Wrap(services.ErrIO, "discovery", "read source list", "stdin", err))
		}
	}
}

func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
