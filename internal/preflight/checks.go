package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and grants mode
// (a combination of unix.R_OK, unix.W_OK, unix.X_OK).
func CheckDirectoryAccess(name, path string, mode uint32) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s ok)", path, describeMode(mode))}
}

// CheckCreatable verifies that path either is a writable directory or can be
// created: its nearest existing ancestor must be a writable directory.
func CheckCreatable(name, path string) Result {
	ancestor, err := nearestExisting(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	result := CheckDirectoryAccess(name, ancestor, unix.W_OK|unix.X_OK)
	if result.Passed && ancestor != filepath.Clean(path) {
		result.Detail = fmt.Sprintf("%s (will be created under %s)", path, ancestor)
	}
	return result
}

// CheckAbsent verifies that nothing exists at path and that it could be
// created as a file.
func CheckAbsent(name, path string) Result {
	if _, err := os.Lstat(path); err == nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: already exists)", path)}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	result := CheckCreatable(name, filepath.Dir(path))
	if result.Passed {
		result.Detail = fmt.Sprintf("%s (can be created)", path)
	}
	return result
}

func nearestExisting(path string) (string, error) {
	current := filepath.Clean(path)
	for {
		if _, err := os.Stat(current); err == nil {
			return current, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", errors.New("no existing ancestor")
		}
		current = parent
	}
}

func describeMode(mode uint32) string {
	var out string
	if mode&unix.R_OK != 0 {
		out += "read/"
	}
	if mode&unix.W_OK != 0 {
		out += "write/"
	}
	if mode&unix.X_OK != 0 {
		out += "search/"
	}
	if out == "" {
		return "access"
	}
	return out[:len(out)-1]
}
