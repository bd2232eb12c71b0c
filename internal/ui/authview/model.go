// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package authview provides the sign-in / sign-up screen.
package authview

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nutrismart-tui/internal/auth"
	"github.com/jeranaias/nutrismart-tui/internal/ui/styles"
)

// submitTimeout bounds one identity round trip.
const submitTimeout = 30 * time.Second

// Mode selects which form is shown.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

// Field indices. Login uses the first two; signup uses all four.
const (
	fieldEmail = iota
	fieldPassword
	fieldConfirm
	fieldDisplayName
	fieldCount
)

// =============================================================================
// MESSAGES
// =============================================================================

// ResultMsg reports the outcome of a submitted auth operation.
type ResultMsg struct {
	Session *auth.Session
	Err     error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the auth screen.
type Model struct {
	theme   *styles.Theme
	manager *auth.Manager

	mode       Mode
	inputs     [fieldCount]textinput.Model
	focus      int
	submitting bool
	errMsg     string

	spinner spinner.Model

	width  int
	height int
}

// New creates the auth screen.
func New(theme *styles.Theme, manager *auth.Manager) *Model {
	m := &Model{
		theme:   theme,
		manager: manager,
	}

	labels := [fieldCount]string{"you@example.com", "password", "confirm password", "display name (optional)"}
	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = labels[i]
		in.Prompt = "> "
		in.PromptStyle = theme.InputPrompt
		in.TextStyle = theme.InputText
		in.PlaceholderStyle = theme.InputPlaceholder
		in.CharLimit = 128
		m.inputs[i] = in
	}
	m.inputs[fieldPassword].EchoMode = textinput.EchoPassword
	m.inputs[fieldConfirm].EchoMode = textinput.EchoPassword

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner
	m.spinner = sp

	m.Reset()
	return m
}

// Reset clears the form back to an empty login prompt. Called when the
// screen is entered and after sign-out, so a previous user's input never
// lingers.
func (m *Model) Reset() {
	m.mode = ModeLogin
	m.focus = fieldEmail
	m.submitting = false
	m.errMsg = ""
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.inputs[fieldEmail].Focus()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	for i := range m.inputs {
		m.inputs[i].Width = min(48, width-8)
	}
}

// Init starts the spinner tick.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// fieldVisible reports whether a field belongs to the current mode.
func (m *Model) fieldVisible(i int) bool {
	if m.mode == ModeLogin {
		return i == fieldEmail || i == fieldPassword
	}
	return true
}

// =============================================================================
// COMMANDS
// =============================================================================

func signInCmd(manager *auth.Manager, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		sess, err := manager.SignInWithPassword(ctx, email, password)
		return ResultMsg{Session: sess, Err: err}
	}
}

func signUpCmd(manager *auth.Manager, email, password, confirm, displayName string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		sess, err := manager.SignUp(ctx, email, password, confirm, displayName)
		return ResultMsg{Session: sess, Err: err}
	}
}

func guestCmd(manager *auth.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		sess, err := manager.SignInAnonymously(ctx)
		return ResultMsg{Session: sess, Err: err}
	}
}
