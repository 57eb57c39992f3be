package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mmcdole/roster/internal/domain"
	"github.com/mmcdole/roster/internal/prompt"
	"github.com/mmcdole/roster/internal/search"
	"github.com/mmcdole/roster/internal/tui/styles"
)

// runList loads the collection and prints it, ranked by match when given
func runList(ctx context.Context, deps sessionDeps, match string, out io.Writer) error {
	rep := deps.reporter()
	sess, err := deps.open(prompt.Fixed{}, rep)
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.Records.ListAll(ctx)
	if err := rep.result(); err != nil {
		return err
	}

	records := sess.Store.Snapshot()
	if match != "" {
		records = search.Rank(records, match)
	}
	fmt.Fprintln(out, renderRecords(records))
	fmt.Fprintln(out, styles.DimStyle.Render(fmt.Sprintf("%d record(s) in %s", len(records), sess.Records.Collection())))
	return nil
}

// renderRecords formats records as a bordered table
func renderRecords(records []domain.Record) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{strconv.Itoa(r.ID), r.Title, r.Name, r.FormattedSize()})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.TableBorder).
		Headers("ID", "Title", "Name", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.AccentStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		String()
}

// runCreate prompts for a name (or takes --title) and creates the record
func runCreate(ctx context.Context, deps sessionDeps, answers *answerTracker, out io.Writer) error {
	rep := deps.reporter()
	sess, err := deps.open(answers, rep)
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.Records.Create(ctx)
	if err := rep.result(); err != nil {
		return err
	}
	if answers.cancelled {
		fmt.Fprintln(out, "Cancelled")
		return nil
	}

	if created := sess.Store.Snapshot(); len(created) > 0 {
		r := created[len(created)-1]
		fmt.Fprintf(out, "✓ Created %d (%s)\n", r.ID, r.Title)
	}
	return nil
}

// runEdit changes one record's title
func runEdit(ctx context.Context, deps sessionDeps, answers *answerTracker, id int, out io.Writer) error {
	rep := deps.reporter()
	sess, err := deps.open(answers, rep)
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.Records.Update(ctx, id)
	if err := rep.result(); err != nil {
		return err
	}
	if answers.cancelled {
		fmt.Fprintln(out, "Cancelled")
		return nil
	}

	fmt.Fprintf(out, "✓ Updated %d\n", id)
	return nil
}

// runDelete removes one record
func runDelete(ctx context.Context, deps sessionDeps, id int, out io.Writer) error {
	rep := deps.reporter()
	sess, err := deps.open(prompt.Fixed{}, rep)
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.Records.Delete(ctx, id)
	if err := rep.result(); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Deleted %d\n", id)
	return nil
}
