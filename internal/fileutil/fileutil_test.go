package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"dicomsort/internal/services"
)

func TestCopyExclusive(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.dcm")
	dst := filepath.Join(dir, "dst.dcm")

	content := []byte("verified copy content")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := CopyExclusive(src, dst)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len(content)) {
		t.Fatalf("written = %d, want %d", n, len(content))
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyExclusiveNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.dcm")
	dst := filepath.Join(dir, "dst.dcm")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := CopyExclusive(src, dst)
	if !services.Is(err, services.ErrPreexistingTarget) {
		t.Fatalf("expected preexisting target, got %v", err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "old" {
		t.Fatalf("existing target was modified: %q", got)
	}
}

func TestCopyExclusiveMissingSource(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "dst.dcm")
	_, err := CopyExclusive(filepath.Join(dir, "nope"), dst)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if services.Classify(err) != services.ReasonIO {
		t.Fatalf("expected io classification, got %q", services.Classify(err))
	}
	if exists, _ := Exists(dst); exists {
		t.Fatal("target must not be created when the source is missing")
	}
}

func TestCopyExclusiveMissingParent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.dcm")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := CopyExclusive(src, filepath.Join(dir, "absent", "dst.dcm"))
	if services.Classify(err) != services.ReasonIO {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestSymlinkExclusive(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.dcm")
	dst := filepath.Join(dir, "link.dcm")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := SymlinkExclusive(src, dst); err != nil {
		t.Fatal(err)
	}
	target, err := os.Readlink(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(target) || target != src {
		t.Fatalf("link target = %q, want %q", target, src)
	}
	if err := SymlinkExclusive(src, dst); !services.Is(err, services.ErrPreexistingTarget) {
		t.Fatalf("expected preexisting target, got %v", err)
	}
}

func TestExistsSeesDanglingLinks(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(dir, "dangling")
	if err := os.Symlink(filepath.Join(dir, "missing"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	exists, err := Exists(link)
	if err != nil || !exists {
		t.Fatalf("Exists(dangling) = %v, %v", exists, err)
	}
	exists, err = Exists(filepath.Join(dir, "missing"))
	if err != nil || exists {
		t.Fatalf("Exists(missing) = %v, %v", exists, err)
	}
}
