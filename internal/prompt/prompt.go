// Package prompt provides line-oriented Prompter implementations for the CLI.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Terminal asks questions on out and reads answers from in, one line each.
// EOF or a cancelled context counts as the user cancelling; an empty line is
// a valid (empty) answer.
type Terminal struct {
	in    io.Reader
	out   io.Writer
	once  sync.Once
	lines chan string
}

// NewTerminal creates a prompter over in and out
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

// readLines feeds lines until EOF or a read error, then closes the channel
func (t *Terminal) readLines() {
	t.lines = make(chan string)
	go func() {
		defer close(t.lines)
		reader := bufio.NewReader(t.in)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				// A final line without newline still counts
				if line != "" {
					t.lines <- strings.TrimRight(line, "\r\n")
				}
				return
			}
			t.lines <- strings.TrimRight(line, "\r\n")
		}
	}()
}

// Ask implements domain.Prompter
func (t *Terminal) Ask(ctx context.Context, text string) (string, bool) {
	t.once.Do(t.readLines)

	fmt.Fprintf(t.out, "%s: ", text)
	select {
	case <-ctx.Done():
		fmt.Fprintln(t.out)
		return "", false
	case line, ok := <-t.lines:
		if !ok {
			fmt.Fprintln(t.out)
			return "", false
		}
		return line, true
	}
}

// Fixed answers every question with the same value (non-interactive use)
type Fixed struct {
	Value string
}

// Ask implements domain.Prompter
func (f Fixed) Ask(ctx context.Context, _ string) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	return f.Value, true
}

// ReadSecret prints label and reads a line from the terminal fd without echo
func ReadSecret(fd int, out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(out) // Add newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// IsTerminal reports whether fd is an interactive terminal
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}
