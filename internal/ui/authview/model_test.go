// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package authview

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nutrismart-tui/internal/auth"
	"github.com/jeranaias/nutrismart-tui/internal/ui/styles"
)

func newTestModel() *Model {
	return New(styles.NewTheme("dark"), auth.NewManager(nil))
}

func typeInto(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestSubmitRequiresEmailAndPassword(t *testing.T) {
	m := newTestModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("empty form must not submit")
	}
	if m.errMsg == "" {
		t.Error("expected a validation message")
	}
}

func TestToggleModeShowsSignupFields(t *testing.T) {
	m := newTestModel()

	if m.fieldVisible(fieldConfirm) {
		t.Error("login mode should hide the confirm field")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.mode != ModeSignup {
		t.Fatal("ctrl+t should switch to signup")
	}
	if !m.fieldVisible(fieldConfirm) || !m.fieldVisible(fieldDisplayName) {
		t.Error("signup mode should show all fields")
	}
	if !strings.Contains(m.View(), "Create Account") {
		t.Error("signup title missing")
	}
}

func TestTabSkipsHiddenFields(t *testing.T) {
	m := newTestModel()

	m.Update(tea.KeyMsg{Type: tea.KeyTab}) // email -> password
	if m.focus != fieldPassword {
		t.Fatalf("expected focus on password, got %d", m.focus)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab}) // wraps past hidden fields
	if m.focus != fieldEmail {
		t.Errorf("login mode should cycle between two fields, got %d", m.focus)
	}
}

func TestResultErrorShownAndClearedByReset(t *testing.T) {
	m := newTestModel()
	typeInto(m, "a@b.com")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeInto(m, "secret123")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("valid form should submit")
	}
	if !m.submitting {
		t.Fatal("should be submitting")
	}

	m.Update(ResultMsg{Err: errors.New("invalid email or password")})
	if m.submitting {
		t.Error("submitting flag must clear")
	}
	if !strings.Contains(m.View(), "invalid email or password") {
		t.Error("error not shown")
	}

	m.Reset()
	if m.errMsg != "" || m.inputs[fieldEmail].Value() != "" {
		t.Error("Reset should clear the form")
	}
	if m.mode != ModeLogin {
		t.Error("Reset should return to login mode")
	}
}

func TestSuccessfulResultResetsForm(t *testing.T) {
	m := newTestModel()
	typeInto(m, "a@b.com")
	m.submitting = true

	m.Update(ResultMsg{Session: &auth.Session{UserID: "u1"}})
	if m.inputs[fieldEmail].Value() != "" {
		t.Error("credentials must not linger after a successful sign-in")
	}
}

func TestInputIgnoredWhileSubmitting(t *testing.T) {
	m := newTestModel()
	m.submitting = true

	typeInto(m, "x")
	if m.inputs[fieldEmail].Value() != "" {
		t.Error("input should be ignored while a request is in flight")
	}
}
