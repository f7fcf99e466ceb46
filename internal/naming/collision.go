package naming

import (
	"path"
	"strconv"
	"strings"
)

// FirstSuffix is the number given to the first duplicate of a path.
const FirstSuffix = 2

// SuffixSeparator joins the filename stem and the duplicate number.
const SuffixSeparator = "_"

// Index tracks relative target paths claimed during one run and resolves
// duplicates by numbering them. Files and the directories above them are
// claimed separately: a file never takes a path this run uses as a
// directory, and a directory chain never runs through a claimed file. It is
// owned by a single run and is not safe for concurrent use.
type Index struct {
	files    map[string]struct{}
	dirs     map[string]struct{}
	counters map[string]int // requested path -> next suffix to try
}

// NewIndex creates an empty used-path index.
func NewIndex() *Index {
	return &Index{
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
		counters: make(map[string]int),
	}
}

// Resolve claims requested (a slash separated relative path) or, when it
// collides with a path already claimed in this run, the first free numbered
// variant of it. A directory segment that names a claimed file is numbered
// at that segment ("x/y" becomes "x_2/y"); a filename that is already a file
// or directory is numbered before its extension. The claimed path is
// returned. Paths are compared after path.Clean.
func (ix *Index) Resolve(requested string) string {
	requested = path.Clean(requested)
	dir, base := path.Split(requested)
	dir = ix.claimDirs(strings.TrimSuffix(dir, "/"))
	if dir != "" {
		requested = dir + "/" + base
	} else {
		requested = base
	}
	if !ix.taken(requested) {
		ix.files[requested] = struct{}{}
		return requested
	}

	stem, ext := splitExt(base)
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}
	n := max(ix.counters[requested], FirstSuffix)
	for {
		candidate := prefix + stem + SuffixSeparator + strconv.Itoa(n) + ext
		if !ix.taken(candidate) {
			ix.counters[requested] = n + 1
			ix.files[candidate] = struct{}{}
			return candidate
		}
		n++
	}
}

// claimDirs claims every prefix of dir as a directory, numbering any segment
// whose prefix is already a claimed file, and returns the resulting chain.
func (ix *Index) claimDirs(dir string) string {
	if dir == "" || dir == "." {
		return ""
	}
	var chain string
	for _, seg := range strings.Split(dir, "/") {
		candidate := path.Join(chain, seg)
		for n := FirstSuffix; ; n++ {
			if _, isFile := ix.files[candidate]; !isFile {
				break
			}
			candidate = path.Join(chain, seg+SuffixSeparator+strconv.Itoa(n))
		}
		ix.dirs[candidate] = struct{}{}
		chain = candidate
	}
	return chain
}

func (ix *Index) taken(rel string) bool {
	if _, ok := ix.files[rel]; ok {
		return true
	}
	_, ok := ix.dirs[rel]
	return ok
}

// splitExt splits a filename into stem and extension. A leading dot does not
// start an extension, so ".hidden" has no extension.
func splitExt(base string) (stem, ext string) {
	ext = path.Ext(base)
	if ext == base || ext == "." {
		return base, ""
	}
	return strings.TrimSuffix(base, ext), ext
}
