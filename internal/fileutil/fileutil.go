package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"dicomsort/internal/services"
)

// CopyExclusive copies src to a newly created dst and verifies the written
// bytes by size and SHA-256. dst must not exist: an existing file, link, or
// directory at dst yields an error marked services.ErrPreexistingTarget and
// is left untouched. A failed or mismatched copy removes dst again.
// It returns the number of bytes written.
func CopyExclusive(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, services.Wrap(services.ErrIO, "copy", "open source", src, err)
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return 0, services.Wrap(services.ErrIO, "copy", "stat source", src, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, srcInfo.Mode().Perm()|0o200)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, services.Wrap(services.ErrPreexistingTarget, "copy", "create target", dst, err)
		}
		return 0, services.Wrap(services.ErrIO, "copy", "create target", dst, err)
	}

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, hasher), in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return 0, services.Wrap(services.ErrIO, "copy", "write target", dst, err)
	}

	if written != srcInfo.Size() {
		_ = os.Remove(dst)
		return 0, services.Wrap(services.ErrIO, "copy", "verify size", dst,
			fmt.Errorf("source %d bytes, copied %d bytes", srcInfo.Size(), written))
	}
	if err := verifyHash(dst, hasher.Sum(nil)); err != nil {
		_ = os.Remove(dst)
		return 0, err
	}
	return written, nil
}

func verifyHash(path string, want []byte) error {
	f, err := os.Open(path)
	if err != nil {
		return services.Wrap(services.ErrIO, "copy", "reopen target", path, err)
	}
	defer f.Close()
	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return services.Wrap(services.ErrIO, "copy", "hash target", path, err)
	}
	if !bytes.Equal(hasher.Sum(nil), want) {
		return services.Wrap(services.ErrIO, "copy", "verify hash", path, errors.New("file corrupted during copy"))
	}
	return nil
}

// SymlinkExclusive creates dst as a symbolic link to the absolute path of src.
// An existing entry at dst yields services.ErrPreexistingTarget.
func SymlinkExclusive(src, dst string) error {
	abs, err := filepath.Abs(src)
	if err != nil {
		return services.Wrap(services.ErrIO, "symlink", "resolve source", src, err)
	}
	if err := os.Symlink(abs, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return services.Wrap(services.ErrPreexistingTarget, "symlink", "create link", dst, err)
		}
		return services.Wrap(services.ErrIO, "symlink", "create link", dst, err)
	}
	return nil
}

// Exists reports whether anything, including a dangling link, occupies path.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
