package naming

import (
	"fmt"
	"testing"
)

func TestResolveUnusedPathIsReturnedUnchanged(t *testing.T) {
	ix := NewIndex()
	if got := ix.Resolve("A/B.dcm"); got != "A/B.dcm" {
		t.Fatalf("Resolve = %q", got)
	}
	if got := ix.Resolve("A/C.dcm"); got != "A/C.dcm" {
		t.Fatalf("sibling in a claimed directory: Resolve = %q", got)
	}
}

func TestResolveNumbersDuplicatesInArrivalOrder(t *testing.T) {
	ix := NewIndex()
	want := []string{"A/B.dcm", "A/B_2.dcm", "A/B_3.dcm", "A/B_4.dcm"}
	for i, w := range want {
		if got := ix.Resolve("A/B.dcm"); got != w {
			t.Fatalf("call %d: Resolve = %q, want %q", i, got, w)
		}
	}
}

func TestResolveSkipsNaturallyRenderedSuffix(t *testing.T) {
	ix := NewIndex()
	ix.Resolve("A/B_2.dcm")
	ix.Resolve("A/B.dcm")
	if got := ix.Resolve("A/B.dcm"); got != "A/B_3.dcm" {
		t.Fatalf("Resolve = %q, want A/B_3.dcm", got)
	}
}

func TestResolveWithoutExtension(t *testing.T) {
	ix := NewIndex()
	ix.Resolve("A/B")
	if got := ix.Resolve("A/B"); got != "A/B_2" {
		t.Fatalf("Resolve = %q", got)
	}
	ix.Resolve(".hidden")
	if got := ix.Resolve(".hidden"); got != ".hidden_2" {
		t.Fatalf("Resolve = %q", got)
	}
}

func TestResolveMultiDotFilenameUsesLastExtension(t *testing.T) {
	ix := NewIndex()
	ix.Resolve("1.2.840.dcm")
	if got := ix.Resolve("1.2.840.dcm"); got != "1.2.840_2.dcm" {
		t.Fatalf("Resolve = %q", got)
	}
}

func TestResolveCleansPaths(t *testing.T) {
	ix := NewIndex()
	ix.Resolve("A//B.dcm")
	if got := ix.Resolve("A/./B.dcm"); got != "A/B_2.dcm" {
		t.Fatalf("Resolve = %q", got)
	}
}

func TestResolveIsDeterministicAcrossIndexes(t *testing.T) {
	inputs := []string{"x/a.dcm", "x/a.dcm", "y/a.dcm", "x/a.dcm", "x/a_2.dcm"}
	run := func() []string {
		ix := NewIndex()
		out := make([]string, 0, len(inputs))
		for _, in := range inputs {
			out = append(out, ix.Resolve(in))
		}
		return out
	}
	first, second := run(), run()
	if fmt.Sprint(first) != fmt.Sprint(second) {
		t.Fatalf("runs differ: %v vs %v", first, second)
	}
	seen := map[string]bool{}
	for _, p := range first {
		if seen[p] {
			t.Fatalf("duplicate assignment %q in %v", p, first)
		}
		seen[p] = true
	}
	if first[4] != "x/a_2_2.dcm" {
		t.Fatalf("expected x/a_2.dcm duplicate to be numbered, got %v", first)
	}
}

func TestResolveFileNeverTakesClaimedDirectory(t *testing.T) {
	ix := NewIndex()
	if got := ix.Resolve("x/y"); got != "x/y" {
		t.Fatalf("Resolve = %q", got)
	}
	if got := ix.Resolve("x"); got != "x_2" {
		t.Fatalf("file on a claimed directory: Resolve = %q, want x_2", got)
	}
	if got := ix.Resolve("a/b/c.dcm"); got != "a/b/c.dcm" {
		t.Fatalf("Resolve = %q", got)
	}
	if got := ix.Resolve("a/b"); got != "a/b_2" {
		t.Fatalf("file on a nested claimed directory: Resolve = %q, want a/b_2", got)
	}
}

func TestResolveDirectoryNeverRunsThroughClaimedFile(t *testing.T) {
	ix := NewIndex()
	if got := ix.Resolve("x"); got != "x" {
		t.Fatalf("Resolve = %q", got)
	}
	if got := ix.Resolve("x/y"); got != "x_2/y" {
		t.Fatalf("directory through a claimed file: Resolve = %q, want x_2/y", got)
	}
	if got := ix.Resolve("x/z"); got != "x_2/z" {
		t.Fatalf("second file under the renumbered directory: Resolve = %q, want x_2/z", got)
	}
	if got := ix.Resolve("x_2"); got != "x_2_2" {
		t.Fatalf("file on the renumbered directory: Resolve = %q, want x_2_2", got)
	}
	if got := ix.Resolve("p/q.dcm"); got != "p/q.dcm" {
		t.Fatalf("Resolve = %q", got)
	}
	if got := ix.Resolve("p/q.dcm/r.dcm"); got != "p/q.dcm_2/r.dcm" {
		t.Fatalf("nested directory through a claimed file: Resolve = %q", got)
	}
}
