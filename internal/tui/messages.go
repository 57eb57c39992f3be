package tui

import "github.com/mmcdole/roster/internal/domain"

// Message types for the TUI

// SnapshotMsg carries the latest displayed records from the store
type SnapshotMsg struct {
	Records []domain.Record
}

// PromptRequestMsg asks the UI to show the input modal
type PromptRequestMsg struct {
	Request PromptRequest
}

// OpDoneMsg signals that a record operation returned.
// It carries no error: failures are reported by the service and only show up
// as an unchanged snapshot.
type OpDoneMsg struct {
	Op string
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
}
