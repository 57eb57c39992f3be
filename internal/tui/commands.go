package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/roster/internal/domain"
	"github.com/mmcdole/roster/internal/record"
)

// RecordService is the set of operations the TUI can trigger
type RecordService interface {
	ListAll(ctx context.Context)
	Create(ctx context.Context)
	Update(ctx context.Context, id int)
	Delete(ctx context.Context, id int)
}

// Command factories for async operations. Each runs on its own goroutine, so
// operations may overlap; their results arrive through the snapshot channel.

// ListAllCmd reloads every record
func ListAllCmd(ctx context.Context, svc RecordService) tea.Cmd {
	return func() tea.Msg {
		svc.ListAll(ctx)
		return OpDoneMsg{Op: record.OpListAll}
	}
}

// CreateCmd asks for a name and creates a record
func CreateCmd(ctx context.Context, svc RecordService) tea.Cmd {
	return func() tea.Msg {
		svc.Create(ctx)
		return OpDoneMsg{Op: record.OpCreate}
	}
}

// UpdateCmd asks for a new title for record id
func UpdateCmd(ctx context.Context, svc RecordService, id int) tea.Cmd {
	return func() tea.Msg {
		svc.Update(ctx, id)
		return OpDoneMsg{Op: record.OpUpdate}
	}
}

// DeleteCmd removes record id
func DeleteCmd(ctx context.Context, svc RecordService, id int) tea.Cmd {
	return func() tea.Msg {
		svc.Delete(ctx, id)
		return OpDoneMsg{Op: record.OpDelete}
	}
}

// WaitForSnapshotCmd reads the next snapshot from the observer channel
func WaitForSnapshotCmd(ch <-chan []domain.Record) tea.Cmd {
	return func() tea.Msg {
		records, ok := <-ch
		if !ok {
			return nil
		}
		return SnapshotMsg{Records: records}
	}
}

// WaitForPromptCmd reads the next question from the modal prompter
func WaitForPromptCmd(ch <-chan PromptRequest) tea.Cmd {
	return func() tea.Msg {
		req, ok := <-ch
		if !ok {
			return nil
		}
		return PromptRequestMsg{Request: req}
	}
}

// ClearStatusAfter clears the status line after d
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
