package prompt

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminal_ReadsLines(t *testing.T) {
	var out bytes.Buffer
	p := NewTerminal(strings.NewReader("Ada\r\n\nlast"), &out)
	ctx := context.Background()

	v, ok := p.Ask(ctx, "Enter the new Title")
	assert.True(t, ok)
	assert.Equal(t, "Ada", v)

	// Empty line is a valid answer, not a cancel
	v, ok = p.Ask(ctx, "again")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	v, ok = p.Ask(ctx, "last")
	assert.True(t, ok)
	assert.Equal(t, "last", v)

	_, ok = p.Ask(ctx, "eof")
	assert.False(t, ok)

	assert.True(t, strings.HasPrefix(out.String(), "Enter the new Title: "))
}

func TestTerminal_ContextCancel(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	p := NewTerminal(r, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := p.Ask(ctx, "never answered")
	assert.False(t, ok)
}

func TestFixed(t *testing.T) {
	v, ok := Fixed{Value: "Bob"}.Ask(context.Background(), "anything")
	assert.True(t, ok)
	assert.Equal(t, "Bob", v)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok = Fixed{Value: "Bob"}.Ask(ctx, "anything")
	assert.False(t, ok)
}
