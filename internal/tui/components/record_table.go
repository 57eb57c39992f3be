package components

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/roster/internal/domain"
	"github.com/mmcdole/roster/internal/search"
	"github.com/mmcdole/roster/internal/tui/styles"
)

const (
	idWidth   = 6
	sizeWidth = 10
	minTitle  = 12
)

// RecordTable shows the displayed records, optionally narrowed by a filter
type RecordTable struct {
	table   table.Model
	all     []domain.Record
	visible []domain.Record
	filter  string
	width   int
}

// NewRecordTable creates an empty table
func NewRecordTable() RecordTable {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(styles.TableStyles()),
	)
	return RecordTable{table: t, width: 80}
}

// columns splits the width between title and name
func columns(width int) []table.Column {
	rest := width - idWidth - sizeWidth - 8 // cell padding
	title := rest * 3 / 5
	if title < minTitle {
		title = minTitle
	}
	name := rest - title
	if name < minTitle {
		name = minTitle
	}
	return []table.Column{
		{Title: "ID", Width: idWidth},
		{Title: "Title", Width: title},
		{Title: "Name", Width: name},
		{Title: "Size", Width: sizeWidth},
	}
}

// SetSize resizes the table to the given outer dimensions
func (t *RecordTable) SetSize(width, height int) {
	t.width = width
	t.table.SetColumns(columns(width))
	t.table.SetWidth(width)
	t.table.SetHeight(height)
}

// SetRecords replaces the data, keeping the cursor on the same record id when possible
func (t *RecordTable) SetRecords(records []domain.Record) {
	selected, hadSelection := t.Selected()
	t.all = records
	t.apply()
	if hadSelection {
		t.selectID(selected.ID)
	}
}

// SetFilter narrows the rows to titles matching query
func (t *RecordTable) SetFilter(query string) {
	t.filter = query
	t.apply()
	t.table.GotoTop()
}

// Filter returns the active filter
func (t RecordTable) Filter() string {
	return t.filter
}

func (t *RecordTable) apply() {
	matches := search.Filter(t.all, t.filter)
	t.visible = make([]domain.Record, len(matches))
	rows := make([]table.Row, len(matches))
	for i, m := range matches {
		t.visible[i] = m.Record
		rows[i] = table.Row{
			strconv.Itoa(m.Record.ID),
			m.Record.Title,
			m.Record.Name,
			m.Record.FormattedSize(),
		}
	}
	t.table.SetRows(rows)
	if c := t.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		t.table.SetCursor(len(rows) - 1)
	}
}

func (t *RecordTable) selectID(id int) {
	for i, r := range t.visible {
		if r.ID == id {
			t.table.SetCursor(i)
			return
		}
	}
}

// Selected returns the record under the cursor
func (t RecordTable) Selected() (domain.Record, bool) {
	c := t.table.Cursor()
	if c < 0 || c >= len(t.visible) {
		return domain.Record{}, false
	}
	return t.visible[c], true
}

// Len returns the number of visible rows and the total number of records
func (t RecordTable) Len() (visible, total int) {
	return len(t.visible), len(t.all)
}

// Update forwards navigation keys to the table
func (t RecordTable) Update(msg tea.Msg) (RecordTable, tea.Cmd) {
	var cmd tea.Cmd
	t.table, cmd = t.table.Update(msg)
	return t, cmd
}

// View renders the table
func (t RecordTable) View() string {
	return t.table.View()
}
