package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/sys/unix"

	"dicomsort/internal/config"
	"dicomsort/internal/services"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir, unix.R_OK|unix.W_OK|unix.X_OK)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "read/write/search ok") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"), unix.R_OK)
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f, unix.R_OK); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCreatable(t *testing.T) {
	base := t.TempDir()
	result := CheckCreatable("target", filepath.Join(base, "a", "b"))
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created under "+base) {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}

	blocker := filepath.Join(base, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckCreatable("target", filepath.Join(blocker, "sub")); result.Passed {
		t.Fatal("a file ancestor must fail the check")
	}
}

func TestCheckAbsent(t *testing.T) {
	base := t.TempDir()
	if result := CheckAbsent("archive", filepath.Join(base, "out.zip")); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	existing := filepath.Join(base, "old.zip")
	if err := os.WriteFile(existing, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckAbsent("archive", existing); result.Passed {
		t.Fatal("expected failure for existing archive")
	}
}

func TestRunAllAndErr(t *testing.T) {
	source := t.TempDir()
	target := filepath.Join(t.TempDir(), "sorted")
	cfg := config.Default()

	results := RunAll(&cfg, source, target)
	if len(results) != 2 {
		t.Fatalf("expected source and target checks, got %+v", results)
	}
	if err := Err(results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Sort.Compress = true
	if err := os.WriteFile(cfg.ArchivePath(target), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	results = RunAll(&cfg, "", target)
	if len(results) != 1 || results[0].Name != "Archive" {
		t.Fatalf("archive-only stdin run should only check the archive, got %+v", results)
	}
	err := Err(results)
	if !services.Is(err, services.ErrIO) {
		t.Fatalf("expected io error, got %v", err)
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("error should name the failure: %v", err)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(nil, "", ""); results != nil {
		t.Fatalf("expected nil results, got %+v", results)
	}
}
