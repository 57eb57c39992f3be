package tui

import (
	"context"
)

// PromptRequest is one question waiting for the input modal
type PromptRequest struct {
	Text  string
	reply chan promptReply
}

type promptReply struct {
	value string
	ok    bool
}

// Answer delivers the user's answer. Safe to call once per request.
func (r PromptRequest) Answer(value string, ok bool) {
	select {
	case r.reply <- promptReply{value: value, ok: ok}:
	default: // Asker already gave up (context cancelled)
	}
}

// ModalPrompter implements domain.Prompter by handing questions to the TUI
type ModalPrompter struct {
	requests chan PromptRequest
}

// NewModalPrompter creates a prompter; the TUI reads Requests()
func NewModalPrompter() *ModalPrompter {
	return &ModalPrompter{requests: make(chan PromptRequest)}
}

// Requests returns the channel the TUI listens on
func (p *ModalPrompter) Requests() <-chan PromptRequest {
	return p.requests
}

// Ask implements domain.Prompter. It blocks until the user answers in the
// modal, presses Esc, or ctx is cancelled.
func (p *ModalPrompter) Ask(ctx context.Context, text string) (string, bool) {
	req := PromptRequest{Text: text, reply: make(chan promptReply, 1)}

	select {
	case p.requests <- req:
	case <-ctx.Done():
		return "", false
	}

	select {
	case r := <-req.reply:
		return r.value, r.ok
	case <-ctx.Done():
		return "", false
	}
}
