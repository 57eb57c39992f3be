package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/roster/internal/tui/styles"
)

// ModalResult is what a key press did to the modal
type ModalResult int

const (
	ModalPending ModalResult = iota
	ModalSubmitted
	ModalCancelled
)

// InputModal is a single-line text prompt
type InputModal struct {
	visible bool
	title   string
	input   textinput.Model
}

// NewInputModal creates a new input modal
func NewInputModal() InputModal {
	ti := textinput.New()
	ti.Placeholder = "Type and press enter, esc to cancel"
	ti.CharLimit = 255 // Single line of text field limit on the list service
	ti.Width = 40
	ti.Prompt = "> "
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return InputModal{input: ti}
}

// Show displays the modal with a title and an empty input
func (m *InputModal) Show(title string) tea.Cmd {
	m.visible = true
	m.title = title
	m.input.SetValue("")
	return m.input.Focus()
}

// Hide dismisses the modal
func (m *InputModal) Hide() {
	m.visible = false
	m.input.Blur()
}

// IsVisible returns whether the modal is shown
func (m InputModal) IsVisible() bool {
	return m.visible
}

// Title returns the question being asked
func (m InputModal) Title() string {
	return m.title
}

// Value returns the current input value
func (m InputModal) Value() string {
	return m.input.Value()
}

// Update handles input events. Enter submits (an empty value is allowed),
// esc cancels; both hide the modal.
func (m InputModal) Update(msg tea.Msg) (InputModal, tea.Cmd, ModalResult) {
	if !m.visible {
		return m, nil, ModalPending
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			m.Hide()
			return m, nil, ModalSubmitted
		case tea.KeyEsc:
			m.Hide()
			return m, nil, ModalCancelled
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd, ModalPending
}

// View renders the input modal
func (m InputModal) View() string {
	if !m.visible {
		return ""
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(m.title),
		"",
		m.input.View(),
	)
	return styles.ModalStyle.Render(content)
}
