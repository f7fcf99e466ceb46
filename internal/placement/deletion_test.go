package placement_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dicomsort/internal/metadata"
	"dicomsort/internal/placement"
	"dicomsort/internal/testsupport"
)

func TestForcedDeletionRemovesPlacedSources(t *testing.T) {
	f := newFixture(t)
	f.add(t, "study/series/1", metadata.TagMapping{"A": "1"})
	f.add(t, "study/series/2", metadata.TagMapping{"A": "2"})
	f.add(t, "study/3", metadata.TagMapping{"A": "3"})

	opts := f.options("%A.dcm")
	opts.DeleteSource = true
	opts.Force = true
	summary, err := f.run(t, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.SourcesDeleted != 3 || summary.DeletionFailures != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(f.source); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("emptied source root should be removed: %v", err)
	}
	if len(testsupport.Tree(t, f.target)) != 3 {
		t.Fatal("placements must survive deletion")
	}
}

func TestDeletionKeepsDirectoriesWithUnplacedFiles(t *testing.T) {
	f := newFixture(t)
	f.add(t, "good/1", metadata.TagMapping{"A": "1"})
	f.add(t, "bad/2", metadata.TagMapping{"A": "taken"})
	f.add(t, "bad/3", metadata.TagMapping{"A": "3"})
	f.add(t, "mixed/readme.txt", nil)
	f.add(t, "mixed/4", metadata.TagMapping{"A": "4"})
	testsupport.WriteContent(t, filepath.Join(f.target, "taken.dcm"), "existing")

	opts := f.options("%A.dcm")
	opts.KeepGoing = true
	opts.DeleteSource = true
	opts.Force = true
	summary, err := f.run(t, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Organized != 3 || summary.Skipped != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	got := testsupport.Tree(t, f.source)
	want := []string{"bad/2", "bad/3", "mixed/readme.txt"}
	if len(got) != len(want) {
		t.Fatalf("source tree = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("source tree = %v, want %v", got, want)
		}
	}
	if _, err := os.Stat(filepath.Join(f.source, "good")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("fully placed directory should be removed: %v", err)
	}
}

func TestDeletionAsksForConfirmation(t *testing.T) {
	f := newFixture(t)
	src := f.add(t, "d/1", metadata.TagMapping{"A": "1"})

	var asked placement.DeletionPlan
	opts := f.options("%A.dcm")
	opts.DeleteSource = true
	opts.Confirm = func(_ context.Context, plan placement.DeletionPlan) (bool, error) {
		asked = plan
		return false, nil
	}
	summary, err := f.run(t, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.DeletionDeclined || summary.SourcesDeleted != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if asked.Files != 1 || len(asked.Dirs) != 1 || asked.Dirs[0] != filepath.Dir(src) {
		t.Fatalf("unexpected plan: %+v", asked)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("declined deletion removed the source: %v", err)
	}
}

func TestDeletionSkippedOnAbort(t *testing.T) {
	f := newFixture(t)
	src := f.add(t, "1", metadata.TagMapping{"A": "1"})
	f.add(t, "2", metadata.TagMapping{"A": "taken"})
	testsupport.WriteContent(t, filepath.Join(f.target, "taken.dcm"), "existing")

	opts := f.options("%A.dcm")
	opts.DeleteSource = true
	opts.Force = true
	if _, err := f.run(t, opts); err == nil {
		t.Fatal("expected abort")
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("aborted run must not delete sources: %v", err)
	}
}

func TestDeletionFromPathListPrunesOnlyListedDirectories(t *testing.T) {
	f := newFixture(t)
	listed := f.add(t, "a/1", metadata.TagMapping{"A": "1"})
	testsupport.WriteContent(t, filepath.Join(f.source, "empty-before", ".keep"), "")
	if err := os.Remove(filepath.Join(f.source, "empty-before", ".keep")); err != nil {
		t.Fatal(err)
	}

	opts := f.options("%A.dcm")
	opts.SourceRoot = ""
	opts.DeleteSource = true
	opts.Force = true
	engine, err := placement.New(opts, f.resolver, nil)
	if err != nil {
		t.Fatal(err)
	}
	summary, err := engine.Run(context.Background(), seqOf(listed))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.SourcesDeleted != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Dir(listed)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("listed directory should be pruned: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.source, "empty-before")); err != nil {
		t.Fatalf("unlisted directory must be left alone: %v", err)
	}
}
