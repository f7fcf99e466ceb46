package selftest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dicomsort/internal/metadata"
	"dicomsort/internal/placement"
	"dicomsort/internal/services"
	"dicomsort/internal/testsupport"
)

// stubFetcher writes a fixed set of files into dst and registers their tags.
type stubFetcher struct {
	t        *testing.T
	resolver *testsupport.Resolver
	files    map[string]metadata.TagMapping
	calls    int
	err      error
}

func (s *stubFetcher) Fetch(_ context.Context, _ string, dst string) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	for rel, tags := range s.files {
		s.resolver.WriteSource(s.t, dst, rel, tags)
	}
	return nil
}

// The resolver is keyed by path, and the scratch directory is renamed after
// the fetch, so lookups are rerouted by file name.
type renamingResolver struct {
	tags map[string]metadata.TagMapping
}

func (r renamingResolver) Resolve(_ context.Context, path string) (metadata.TagMapping, error) {
	if tags, ok := r.tags[filepath.Base(path)]; ok {
		return tags, nil
	}
	return nil, services.Wrap(services.ErrNotRecognized, "test", "lookup", path, nil)
}

func sampleTags(series, instance string) metadata.TagMapping {
	return metadata.TagMapping{
		"PatientName":       "Anon",
		"StudyDescription":  "Brain",
		"StudyDate":         "20130418",
		"SeriesDescription": series,
		"SeriesNumber":      "3",
		"InstanceNumber":    instance,
	}
}

func TestRunDownloadsOnceAndSorts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	files := map[string]metadata.TagMapping{
		"case/IMG0001": sampleTags("FLAIR", "1"),
		"case/IMG0002": sampleTags("FLAIR", "2"),
		"case/README":  nil,
	}
	fetcher := &stubFetcher{t: t, resolver: testsupport.NewResolver(), files: files}
	resolver := renamingResolver{tags: map[string]metadata.TagMapping{
		"IMG0001": files["case/IMG0001"],
		"IMG0002": files["case/IMG0002"],
	}}

	var observed int
	runner := NewRunner(cfg, fetcher, resolver, nil)
	report, err := runner.Run(context.Background(), func(placement.Outcome) { observed++ })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Downloaded || fetcher.calls != 1 {
		t.Fatalf("expected a download, report=%+v calls=%d", report, fetcher.calls)
	}
	if report.Summary.Organized != 2 || report.Summary.Skipped != 1 || observed != 3 {
		t.Fatalf("unexpected summary: %+v observed=%d", report.Summary, observed)
	}
	want := filepath.Join(report.OutputDir, "Anon", "Brain-20130418", "FLAIR-3-2.dcm")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected %s: %v", want, err)
	}

	report, err = runner.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if report.Downloaded || fetcher.calls != 1 {
		t.Fatalf("sample data should be reused, calls=%d", fetcher.calls)
	}
	if report.Summary.Organized != 2 {
		t.Fatalf("output should be rebuilt from scratch: %+v", report.Summary)
	}
}

func TestRunFailsWhenNothingSorts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fetcher := &stubFetcher{t: t, resolver: testsupport.NewResolver(), files: map[string]metadata.TagMapping{"x": nil}}
	runner := NewRunner(cfg, fetcher, renamingResolver{}, nil)

	_, err := runner.Run(context.Background(), nil)
	if err == nil {
		t.Fatal("expected failure when no file is organized")
	}
	if services.Hint(err) == "" {
		t.Fatalf("expected a hint, got %v", err)
	}
}

func TestRunReportsDownloadFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fetcher := &stubFetcher{t: t, err: errors.New("network unreachable")}
	runner := NewRunner(cfg, fetcher, renamingResolver{}, nil)

	_, err := runner.Run(context.Background(), nil)
	if services.Classify(err) != services.ReasonIO {
		t.Fatalf("expected io error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(cfg.SelfTest.WorkDir, dataDirName)); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("failed download must not leave data behind: %v", statErr)
	}
	entries, _ := os.ReadDir(cfg.SelfTest.WorkDir)
	if len(entries) != 0 {
		t.Fatalf("scratch directories left behind: %v", entries)
	}
}
