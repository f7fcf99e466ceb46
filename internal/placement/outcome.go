package placement

import "dicomsort/internal/services"

// Status is the terminal state of one source file.
type Status int

const (
	StatusOrganized Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOrganized:
		return "organized"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Outcome records what happened to one source file.
type Outcome struct {
	Source string
	Status Status
	// Target is the slash separated path relative to the target root. It is
	// empty when the file never reached path resolution.
	Target string
	Reason services.Reason
	Err    error
	Bytes  int64
}

// Summary accumulates run counts. It is returned from Run even when the run
// aborts.
type Summary struct {
	Organized        int
	Skipped          int
	Failed           int
	SkippedByReason  map[services.Reason]int
	FailedByReason   map[services.Reason]int
	Suffixed         int
	BytesPlaced      int64
	SourcesDeleted   int
	DeletionFailures int
	DeletionDeclined bool
	ArchivePath      string
	ArchiveEntries   int
	Aborted          bool
}

func newSummary() Summary {
	return Summary{
		SkippedByReason: make(map[services.Reason]int),
		FailedByReason:  make(map[services.Reason]int),
	}
}

func (s *Summary) record(o Outcome) {
	switch o.Status {
	case StatusOrganized:
		s.Organized++
		s.BytesPlaced += o.Bytes
	case StatusSkipped:
		s.Skipped++
		s.SkippedByReason[o.Reason]++
	case StatusFailed:
		s.Failed++
		s.FailedByReason[o.Reason]++
	}
}

// Total is the number of source files that reached a terminal state.
func (s Summary) Total() int {
	return s.Organized + s.Skipped + s.Failed
}
