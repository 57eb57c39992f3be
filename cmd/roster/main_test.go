package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/roster/internal/config"
	"github.com/mmcdole/roster/internal/domain"
	"github.com/mmcdole/roster/internal/log"
	"github.com/mmcdole/roster/internal/prompt"
	"github.com/mmcdole/roster/internal/remote"
)

func TestParseFlags(t *testing.T) {
	fs, flags, err := parseFlags([]string{"edit", "7", "--title", "", "--log-level", "debug"})
	require.NoError(t, err)

	assert.Equal(t, []string{"edit", "7"}, fs.Args())
	assert.True(t, flags.titleSet)
	assert.Empty(t, flags.title)
	assert.True(t, fs.Changed("log-level"))
}

func TestIDArg(t *testing.T) {
	id, err := idArg([]string{"12"})
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	_, err = idArg(nil)
	assert.Error(t, err)

	_, err = idArg([]string{"abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestAnswerer(t *testing.T) {
	p := answerer(&cliFlags{title: "Grace", titleSet: true})

	got, ok := p.Ask(context.Background(), "ignored")
	assert.True(t, ok)
	assert.Equal(t, "Grace", got)
}

func TestCLIReporter(t *testing.T) {
	var out bytes.Buffer
	rep := &cliReporter{log: log.NewReporter(log.NullLogger()), out: &out}
	require.NoError(t, rep.result())

	rep.Report(context.Background(), "delete", errors.New("boom"), domain.SeverityError)

	assert.ErrorIs(t, rep.result(), errOperationFailed)
	assert.Contains(t, out.String(), "delete failed: boom")
}

func TestRenderRecords(t *testing.T) {
	out := renderRecords([]domain.Record{
		{ID: 1, Title: "Ada", Name: "ada.docx", Size: 2048},
		{ID: 2, Title: "Grace"},
	})

	for _, want := range []string{"ID", "Title", "Ada", "ada.docx", "2 KB", "Grace"} {
		assert.Contains(t, out, want)
	}
}

// newListServer serves item 7 and counts MERGE and create requests
func newListServer(t *testing.T, writes *atomic.Int32) sessionDeps {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			io.WriteString(w, `{"Id":7,"Title":"Ada"}`)
			return
		}
		writes.Add(1)
		if r.Header.Get("X-HTTP-Method") == "" {
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"Id":8,"Title":"Grace"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Server.SiteURL = srv.URL
	cfg.Server.Token = "secret"
	logger := log.NullLogger()
	return sessionDeps{
		cfg:    cfg,
		client: remote.NewClient(srv.URL, "secret", logger, remote.WithHTTPClient(srv.Client())),
		logger: logger,
	}
}

func cancelledAnswers() *answerTracker {
	return &answerTracker{prompter: prompt.NewTerminal(strings.NewReader(""), io.Discard)}
}

func TestRunEdit(t *testing.T) {
	var writes atomic.Int32
	deps := newListServer(t, &writes)

	var out bytes.Buffer
	require.NoError(t, runEdit(context.Background(), deps, &answerTracker{prompter: prompt.Fixed{Value: "Grace"}}, 7, &out))
	assert.Contains(t, out.String(), "Updated 7")
	assert.Equal(t, int32(1), writes.Load())
}

func TestRunEdit_CancelledPromptReportsNoUpdate(t *testing.T) {
	var writes atomic.Int32
	deps := newListServer(t, &writes)

	var out bytes.Buffer
	require.NoError(t, runEdit(context.Background(), deps, cancelledAnswers(), 7, &out))
	assert.NotContains(t, out.String(), "Updated")
	assert.Contains(t, out.String(), "Cancelled")
	assert.Zero(t, writes.Load())
}

func TestRunCreate_CancelledPromptReportsNothingCreated(t *testing.T) {
	var writes atomic.Int32
	deps := newListServer(t, &writes)

	var out bytes.Buffer
	require.NoError(t, runCreate(context.Background(), deps, cancelledAnswers(), &out))
	assert.NotContains(t, out.String(), "Created")
	assert.Zero(t, writes.Load())

	out.Reset()
	require.NoError(t, runCreate(context.Background(), deps, &answerTracker{prompter: prompt.Fixed{Value: "Grace"}}, &out))
	assert.Contains(t, out.String(), "Created 8 (Grace)")
}
