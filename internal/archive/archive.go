package archive

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/klauspost/compress/zip"

	"dicomsort/internal/services"
)

// Writer receives placed files. Entries keep the order of Append calls.
// Finalize must be called exactly once to produce a readable archive.
type Writer interface {
	Append(rel string, src io.Reader, modified time.Time) (int64, error)
	Finalize() error
	Path() string
	// Entries is the number of files appended so far.
	Entries() int
}

// ErrFinalized is returned by Append after Finalize.
var ErrFinalized = errors.New("archive already finalized")

// Zip writes a zip archive to a file that must not exist beforehand.
type Zip struct {
	path      string
	file      *os.File
	zw        *zip.Writer
	entries   int
	finalized bool
}

// CreateZip creates the archive file exclusively. An existing file at path is
// reported as services.ErrPreexistingTarget.
func CreateZip(path string) (*Zip, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, services.WithHint(
				services.Wrap(services.ErrPreexistingTarget, "archive", "create", path, err),
				"remove the existing archive or set archive.path",
			)
		}
		return nil, services.Wrap(services.ErrIO, "archive", "create", path, err)
	}
	return &Zip{path: path, file: file, zw: zip.NewWriter(file)}, nil
}

// Path returns the archive file path.
func (z *Zip) Path() string { return z.path }

// Entries returns the number of files appended so far.
func (z *Zip) Entries() int { return z.entries }

// Append stores src under rel. rel must be a slash separated local path.
func (z *Zip) Append(rel string, src io.Reader, modified time.Time) (int64, error) {
	if z.finalized {
		return 0, ErrFinalized
	}
	name := path.Clean(rel)
	if !fs.ValidPath(name) || name == "." {
		return 0, services.Wrap(services.ErrUnsafeTarget, "archive", "append", rel, nil)
	}
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified.UTC(),
	}
	header.SetMode(0o644)
	w, err := z.zw.CreateHeader(header)
	if err != nil {
		return 0, services.Wrap(services.ErrIO, "archive", "add entry", name, err)
	}
	n, err := io.Copy(w, src)
	if err != nil {
		return n, services.Wrap(services.ErrIO, "archive", "write entry", name, err)
	}
	z.entries++
	return n, nil
}

// Finalize writes the central directory and closes the file. Later calls
// return nil.
func (z *Zip) Finalize() error {
	if z.finalized {
		return nil
	}
	z.finalized = true
	if err := z.zw.Close(); err != nil {
		_ = z.file.Close()
		return services.Wrap(services.ErrIO, "archive", "finalize", z.path, err)
	}
	if err := z.file.Close(); err != nil {
		return services.Wrap(services.ErrIO, "archive", "close", z.path, err)
	}
	return nil
}

// AppendFile opens sourcePath and appends it under rel with the source
// modification time.
func AppendFile(w Writer, rel, sourcePath string) (int64, error) {
	f, err := os.Open(sourcePath)
	if err != nil {
		return 0, services.Wrap(services.ErrIO, "archive", "open source", sourcePath, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return 0, services.Wrap(services.ErrIO, "archive", "stat source", sourcePath, err)
	}
	return w.Append(rel, f, info.ModTime())
}
