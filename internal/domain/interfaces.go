package domain

import "context"

// CollectionClient: Network operations against the remote list service.
// No caching, no state. Get returns the raw response payload untouched.
type CollectionClient interface {
	Get(ctx context.Context, q Query) ([]byte, error)
	Create(ctx context.Context, collection string, fields Fields) (*Item, error)
	Update(ctx context.Context, collection string, id int, fields Fields) error
	Delete(ctx context.Context, collection string, id int) error
}

// Reader serves read operations, possibly from a cache.
type Reader interface {
	Fetch(ctx context.Context, q Query) ([]byte, error)
}

// Prompter asks the user for a line of text.
// ok is false when the user cancelled.
type Prompter interface {
	Ask(ctx context.Context, text string) (value string, ok bool)
}

// Reporter receives failures caught at the service boundary.
// Implementations must never panic or block the caller for long.
type Reporter interface {
	Report(ctx context.Context, op string, err error, sev Severity)
}

// SnapshotObserver receives a copy of the displayed records after every change.
type SnapshotObserver interface {
	OnSnapshot(records []Record)
}

// ObserverFunc adapts a function to SnapshotObserver.
type ObserverFunc func(records []Record)

func (f ObserverFunc) OnSnapshot(records []Record) { f(records) }

// Severity of a reported failure
type Severity int

const (
	SeverityVerbose Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

// String returns a human-readable representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityVerbose:
		return "Verbose"
	case SeverityInfo:
		return "Info"
	case SeverityWarning:
		return "Warning"
	case SeverityError:
		return "Error"
	default:
		return "Unknown"
	}
}
