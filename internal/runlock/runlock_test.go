package runlock

import (
	"path/filepath"
	"testing"

	"dicomsort/internal/services"
)

func TestAcquireIsExclusivePerTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "sorted")

	first, err := AcquireIn(dir, target)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer first.Release()

	_, err = AcquireIn(dir, target+"/")
	if !services.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if services.Hint(err) == "" {
		t.Fatal("expected a hint on the busy error")
	}

	other, err := AcquireIn(dir, target+"-other")
	if err != nil {
		t.Fatalf("distinct targets must not contend: %v", err)
	}
	if err := other.Release(); err != nil {
		t.Fatal(err)
	}
}

func TestReleaseAllowsReacquire(t *testing.T) {
	dir := t.TempDir()
	target := t.TempDir()

	lock, err := AcquireIn(dir, target)
	if err != nil {
		t.Fatal(err)
	}
	if err := lock.Release(); err != nil {
		t.Fatal(err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("second release should be a no-op: %v", err)
	}
	again, err := AcquireIn(dir, target)
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	_ = again.Release()
}

func TestLockPathIsStable(t *testing.T) {
	a, err := LockPath("/tmp", "/data/out")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := LockPath("/tmp", "/data/./out")
	c, _ := LockPath("/tmp", "/data/other")
	if a != b {
		t.Fatalf("equivalent targets differ: %q vs %q", a, b)
	}
	if a == c {
		t.Fatal("different targets share a lock path")
	}
	if filepath.Dir(a) != "/tmp" {
		t.Fatalf("lock not placed in dir: %q", a)
	}
}
