package organizer

import "time"

type Mode int

const (
	ModePreview Mode = iota
	ModeOrganize
)

// Options controls a single organize run.
type Options struct {
	Mode    Mode
	Workers int
	// DrainTimeout bounds the wait for in-flight moves. Zero means the
	// configured default.
	DrainTimeout time.Duration
	// ByDate files images into a YYYY-MM subfolder of their category,
	// taken from EXIF capture date with mtime as fallback.
	ByDate bool
	// Sniff resolves extensionless files by magic-byte signature before
	// falling back to the default category.
	Sniff bool
}

// Job is one file to organize. Owned by exactly one worker.
type Job struct {
	Path string
	Name string
	Base string
}

type Status int

const (
	StatusMoved Status = iota
	StatusPlanned
	StatusSkipped
	StatusFailed
)

// FailureKind classifies a per-file failure for reporting.
type FailureKind int

const (
	FailNone FailureKind = iota
	FailNotFound
	FailAlreadyExists
	FailPermission
	FailIO
)

func (k FailureKind) String() string {
	switch k {
	case FailNotFound:
		return "not found"
	case FailAlreadyExists:
		return "already exists"
	case FailPermission:
		return "permission denied"
	case FailIO:
		return "i/o error"
	default:
		return "none"
	}
}

// Outcome is the terminal result of one Job. Exactly one Outcome is
// produced per job that reaches a worker.
type Outcome struct {
	Source   string
	Dest     string
	Category string
	Status   Status
	Kind     FailureKind
	Err      error
	// Reason explains a skip ("canceled").
	Reason string
	// Warning carries a non-fatal note on a successful move, such as a
	// source that could not be removed after a copy fallback.
	Warning string
}

type Summary struct {
	Submitted   int
	Moved       int
	Planned     int
	Skipped     int
	Failed      int
	DirsCreated int
	// Unfinished counts jobs that never reached a terminal outcome
	// before the drain deadline.
	Unfinished int
	TimedOut   bool
}

type ProgressUpdate struct {
	TotalDelta       int
	ProcessedDelta   int
	SkippedDelta     int
	FailedDelta      int
	DirsCreatedDelta int
}
