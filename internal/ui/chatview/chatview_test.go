// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatview

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nutrismart-tui/internal/api"
	"github.com/jeranaias/nutrismart-tui/internal/auth"
	"github.com/jeranaias/nutrismart-tui/internal/gateway"
	"github.com/jeranaias/nutrismart-tui/internal/model"
	"github.com/jeranaias/nutrismart-tui/internal/realtime"
	"github.com/jeranaias/nutrismart-tui/internal/store"
	"github.com/jeranaias/nutrismart-tui/internal/ui/styles"
)

type noopBackend struct{}

func (noopBackend) Chat(ctx context.Context, message, history string) (api.ChatReply, error) {
	return api.ChatReply{Response: "ok"}, nil
}
func (noopBackend) SyncProfile(ctx context.Context, profile model.Profile) error { return nil }
func (noopBackend) SubmitBill(ctx context.Context, receipt json.RawMessage) error { return nil }

type noopStore struct{}

func (noopStore) Write(ctx context.Context, path string, fields map[string]any, merge bool) error {
	return nil
}
func (noopStore) ListenCollection(ctx context.Context, path string) (<-chan store.Update, error) {
	ch := make(chan store.Update)
	go func() { <-ctx.Done(); close(ch) }()
	return ch, nil
}
func (noopStore) ListenDocument(ctx context.Context, path string) (<-chan store.Update, error) {
	ch := make(chan store.Update)
	go func() { <-ctx.Done(); close(ch) }()
	return ch, nil
}

type fixedSession struct{ sess *auth.Session }

func (f fixedSession) Current() *auth.Session { return f.sess }

func newTestModel(t *testing.T) *Model {
	t.Helper()
	collections := realtime.NewCollections(noopStore{}, "nutrismart", "", nil)
	t.Cleanup(collections.Close)
	gw := gateway.New(noopBackend{}, noopStore{}, fixedSession{&auth.Session{UserID: "u1"}}, collections, "nutrismart", nil)

	m := New(styles.NewTheme("dark"), gw, collections, 80)
	m.SetSize(100, 30)
	return m
}

func typeInto(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestEmptyTranscriptShowsPrompt(t *testing.T) {
	m := newTestModel(t)
	if !strings.Contains(m.renderTranscript(), "No messages yet") {
		t.Error("empty state prompt missing")
	}
}

func TestTranscriptShowsNoticeForAnonymousReplies(t *testing.T) {
	m := newTestModel(t)
	m.collections.StageMessage(model.ChatMessage{Role: model.RoleUser, Text: "hi", Timestamp: 1000})
	m.collections.StageMessage(model.ChatMessage{Role: model.RoleAssistant, Text: "hello", Timestamp: 1001, RequiresAuth: true})

	transcript := m.renderTranscript()
	if !strings.Contains(transcript, "Sign in to get answers") {
		t.Error("requires_auth notice missing from transcript")
	}
}

func TestUnknownSlashCommand(t *testing.T) {
	m := newTestModel(t)
	typeInto(m, "/bogus")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if !strings.Contains(m.errMsg, "unknown command") {
		t.Errorf("expected unknown command error, got %q", m.errMsg)
	}
	if m.sending {
		t.Error("slash commands must not mark the view as sending")
	}
}

func TestHelpCommand(t *testing.T) {
	m := newTestModel(t)
	typeInto(m, "/help")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if !strings.Contains(m.statusMsg, "/export") {
		t.Errorf("help should list commands, got %q", m.statusMsg)
	}
}

func TestExportWithUnknownFormat(t *testing.T) {
	m := newTestModel(t)
	typeInto(m, "/export pdf")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("unknown export format must not start an export")
	}
	if !strings.Contains(m.errMsg, "unknown export format") {
		t.Errorf("expected format error, got %q", m.errMsg)
	}
}

func TestTranscriptCarriesOwner(t *testing.T) {
	m := newTestModel(t)
	m.collections.StageMessage(model.ChatMessage{Role: model.RoleUser, Text: "hi", Timestamp: 1000})

	m.SetOwner("ada@example.com")
	if got := m.transcript(); got.Owner != "ada@example.com" || len(got.Messages) != 1 {
		t.Errorf("transcript = owner %q with %d messages", got.Owner, len(got.Messages))
	}

	// Signing out drops the label from later exports.
	m.SetOwner("")
	if got := m.transcript(); got.Owner != "" {
		t.Errorf("owner should clear on sign-out, got %q", got.Owner)
	}
}

func TestSubmitSetsSendingAndClearsInput(t *testing.T) {
	m := newTestModel(t)
	typeInto(m, "what should I eat?")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd == nil {
		t.Fatal("expected a send command")
	}
	if !m.sending {
		t.Error("sending flag not set")
	}
	if m.input.Value() != "" {
		t.Error("input should clear on submit")
	}

	// Second submit while sending keeps the draft.
	typeInto(m, "second")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("no new send while one is in flight")
	}
	if m.input.Value() != "second" {
		t.Errorf("draft should be kept, got %q", m.input.Value())
	}

	m.Update(SendResultMsg{})
	if m.sending {
		t.Error("sending flag must clear on result")
	}
}
