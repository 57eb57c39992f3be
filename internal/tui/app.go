package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/roster/internal/domain"
	"github.com/mmcdole/roster/internal/tui/components"
	"github.com/mmcdole/roster/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateFiltering
	StatePrompting
)

// Vertical chrome: header, subtitle, table border, status, help
const chromeHeight = 7

// statusTTL is how long a status message stays visible
const statusTTL = 3 * time.Second

const spinnerInterval = 80 * time.Millisecond

type spinnerTickMsg struct{}

// Options wires the model to a session
type Options struct {
	Service    RecordService
	Snapshots  <-chan []domain.Record
	Prompts    <-chan PromptRequest
	Collection string
	Logger     *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	State ApplicationState
	Ready bool

	// Services
	ctx       context.Context
	cancel    context.CancelFunc
	svc       RecordService
	snapshots <-chan []domain.Record
	prompts   <-chan PromptRequest
	logger    *slog.Logger

	// UI Components
	Table      components.RecordTable
	InputModal components.InputModal
	FilterBox  textinput.Model
	Help       help.Model

	// Pending questions; the head is the one shown in the modal
	promptQueue []PromptRequest

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	InFlight     int
	SpinnerFrame int
	Collection   string
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	fb := textinput.New()
	fb.Prompt = "/"
	fb.PromptStyle = styles.FilterPromptStyle
	fb.Placeholder = "filter titles"
	fb.PlaceholderStyle = styles.DimStyle

	return Model{
		State:      StateBrowsing,
		ctx:        ctx,
		cancel:     cancel,
		svc:        opts.Service,
		snapshots:  opts.Snapshots,
		prompts:    opts.Prompts,
		logger:     opts.Logger,
		Table:      components.NewRecordTable(),
		InputModal: components.NewInputModal(),
		FilterBox:  fb,
		Help:       help.New(),
		Collection: opts.Collection,
		InFlight:   1, // Init loads the list
	}
}

// Init starts listening for snapshots and prompts and loads the list
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForSnapshotCmd(m.snapshots),
		WaitForPromptCmd(m.prompts),
		ListAllCmd(m.ctx, m.svc),
		spinnerTick(),
	)
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg { return spinnerTickMsg{} })
}

// startOp records an operation in flight and returns its command
func (m *Model) startOp(cmd tea.Cmd) tea.Cmd {
	m.InFlight++
	if m.InFlight == 1 {
		return tea.Batch(cmd, spinnerTick())
	}
	return cmd
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.Help.Width = msg.Width
		m.Table.SetSize(max(msg.Width-2, 20), max(msg.Height-chromeHeight, 3))
		return m, nil

	case SnapshotMsg:
		m.Table.SetRecords(msg.Records)
		return m, WaitForSnapshotCmd(m.snapshots)

	case PromptRequestMsg:
		m.promptQueue = append(m.promptQueue, msg.Request)
		cmd := m.showNextPrompt()
		return m, tea.Batch(cmd, WaitForPromptCmd(m.prompts))

	case OpDoneMsg:
		if m.InFlight > 0 {
			m.InFlight--
		}
		m.logger.Debug("operation returned", "op", msg.Op, "inFlight", m.InFlight)
		return m, nil

	case spinnerTickMsg:
		if m.InFlight == 0 {
			return m, nil
		}
		m.SpinnerFrame = (m.SpinnerFrame + 1) % len(styles.SpinnerFrames)
		return m, spinnerTick()

	case StatusMsg:
		m.StatusMsg = msg.Message
		return m, ClearStatusAfter(statusTTL)

	case ClearStatusMsg:
		m.StatusMsg = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// showNextPrompt opens the modal for the head of the queue if it is closed
func (m *Model) showNextPrompt() tea.Cmd {
	if m.InputModal.IsVisible() || len(m.promptQueue) == 0 {
		return nil
	}
	m.State = StatePrompting
	return m.InputModal.Show(m.promptQueue[0].Text)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	switch m.State {
	case StatePrompting:
		return m.handlePromptKey(msg)
	case StateFiltering:
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m.quit()

	case key.Matches(msg, Keys.Create):
		return m, m.startOp(CreateCmd(m.ctx, m.svc))

	case key.Matches(msg, Keys.Edit):
		if rec, ok := m.Table.Selected(); ok {
			return m, m.startOp(UpdateCmd(m.ctx, m.svc, rec.ID))
		}
		return m, nil

	case key.Matches(msg, Keys.Delete):
		if rec, ok := m.Table.Selected(); ok {
			m.StatusMsg = fmt.Sprintf("Deleting %d…", rec.ID)
			return m, tea.Batch(m.startOp(DeleteCmd(m.ctx, m.svc, rec.ID)), ClearStatusAfter(statusTTL))
		}
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		return m, m.startOp(ListAllCmd(m.ctx, m.svc))

	case key.Matches(msg, Keys.Filter):
		m.State = StateFiltering
		m.FilterBox.SetValue(m.Table.Filter())
		return m, m.FilterBox.Focus()

	case key.Matches(msg, Keys.Escape):
		m.Table.SetFilter("")
		return m, nil

	case key.Matches(msg, Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var result components.ModalResult
	m.InputModal, cmd, result = m.InputModal.Update(msg)

	if result == components.ModalPending {
		return m, cmd
	}

	req := m.promptQueue[0]
	m.promptQueue = m.promptQueue[1:]
	if result == components.ModalSubmitted {
		req.Answer(m.InputModal.Value(), true)
	} else {
		req.Answer("", false)
	}

	m.State = StateBrowsing
	return m, m.showNextPrompt()
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.State = StateBrowsing
		m.FilterBox.Blur()
		return m, nil
	case tea.KeyEsc:
		m.State = StateBrowsing
		m.FilterBox.Blur()
		m.FilterBox.SetValue("")
		m.Table.SetFilter("")
		return m, nil
	}

	var cmd tea.Cmd
	m.FilterBox, cmd = m.FilterBox.Update(msg)
	m.Table.SetFilter(m.FilterBox.Value())
	return m, cmd
}

// quit cancels in-flight operations (pending prompts return cancelled)
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	for _, req := range m.promptQueue {
		req.Answer("", false)
	}
	m.promptQueue = nil
	return m, tea.Quit
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("Welcome to roster")
	visible, total := m.Table.Len()
	subtitle := styles.SubtitleStyle.Render(fmt.Sprintf("%s · %d records", m.Collection, total))
	if f := m.Table.Filter(); f != "" {
		subtitle = styles.SubtitleStyle.Render(fmt.Sprintf("%s · %d of %d records match %q", m.Collection, visible, total, f))
	}

	body := styles.TableBorder.Render(m.Table.View())
	if m.InputModal.IsVisible() {
		body = lipgloss.Place(
			lipgloss.Width(body), lipgloss.Height(body),
			lipgloss.Center, lipgloss.Center,
			m.InputModal.View(),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		subtitle,
		body,
		m.statusLine(),
		m.Help.View(Keys),
	)
}

func (m Model) statusLine() string {
	var parts []string
	if m.State == StateFiltering {
		parts = append(parts, m.FilterBox.View())
	}
	if m.InFlight > 0 {
		parts = append(parts, styles.AccentStyle.Render(styles.SpinnerFrames[m.SpinnerFrame])+" working")
	}
	if m.StatusMsg != "" {
		parts = append(parts, styles.DimStyle.Render(m.StatusMsg))
	}
	if len(parts) == 0 {
		return styles.SuccessStyle.Render("Ready")
	}
	return strings.Join(parts, "  ")
}

// Close cancels any work still running; safe to call after the program exits
func (m Model) Close() {
	m.cancel()
}
