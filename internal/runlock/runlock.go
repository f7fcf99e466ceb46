// Package runlock keeps two sorting runs from writing into the same target
// root at once. The lock file lives in the temp directory, named after the
// absolute target path, so the output tree carries no lock artifacts.
package runlock

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"dicomsort/internal/services"
)

// ErrBusy reports that another run holds the lock for the same target root.
var ErrBusy = errors.New("another dicomsort run is using this target")

// Lock is a held target lock.
type Lock struct {
	path  string
	flock *flock.Flock
}

// Acquire takes the lock for targetRoot in the system temp directory.
func Acquire(targetRoot string) (*Lock, error) {
	return AcquireIn(os.TempDir(), targetRoot)
}

// AcquireIn takes the lock for targetRoot with the lock file placed in dir.
// It never blocks: a held lock yields an error wrapping ErrBusy.
func AcquireIn(dir, targetRoot string) (*Lock, error) {
	path, err := LockPath(dir, targetRoot)
	if err != nil {
		return nil, err
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "runlock", "acquire lock", path, err)
	}
	if !ok {
		return nil, services.WithHint(
			services.Wrap(services.ErrIO, "runlock", "acquire lock", targetRoot, ErrBusy),
			"wait for the other run on this target to finish",
		)
	}
	return &Lock{path: path, flock: fl}, nil
}

// LockPath returns the lock file used for targetRoot under dir.
func LockPath(dir, targetRoot string) (string, error) {
	abs, err := filepath.Abs(targetRoot)
	if err != nil {
		return "", services.Wrap(services.ErrIO, "runlock", "resolve target", targetRoot, err)
	}
	key := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(abs)))
	return filepath.Join(dir, "dicomsort-"+key.String()+".lock"), nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release unlocks. The lock file stays so every run locks the same inode.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return services.Wrap(services.ErrIO, "runlock", "release lock", l.path, err)
	}
	l.flock = nil
	return nil
}
