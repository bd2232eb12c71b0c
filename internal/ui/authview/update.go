// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package authview

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages for the auth screen.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case ResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		// The router reacts to the session change; the form resets so
		// nothing leaks into the next time this screen is shown.
		m.Reset()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, m.updateFocused(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	if m.submitting {
		return m, nil // ignore input while a request is in flight
	}

	switch msg.String() {
	case "tab", "down":
		m.cycleFocus(1)
		return m, nil

	case "shift+tab", "up":
		m.cycleFocus(-1)
		return m, nil

	case "ctrl+t":
		m.toggleMode()
		return m, nil

	case "ctrl+g":
		m.submitting = true
		m.errMsg = ""
		return m, guestCmd(m.manager)

	case "enter":
		return m.submit()
	}

	return m, m.updateFocused(msg)
}

func (m *Model) cycleFocus(dir int) {
	m.inputs[m.focus].Blur()
	for {
		m.focus = (m.focus + dir + fieldCount) % fieldCount
		if m.fieldVisible(m.focus) {
			break
		}
	}
	m.inputs[m.focus].Focus()
}

func (m *Model) toggleMode() {
	if m.mode == ModeLogin {
		m.mode = ModeSignup
	} else {
		m.mode = ModeLogin
	}
	m.errMsg = ""
	if !m.fieldVisible(m.focus) {
		m.inputs[m.focus].Blur()
		m.focus = fieldEmail
		m.inputs[m.focus].Focus()
	}
}

func (m *Model) submit() (*Model, tea.Cmd) {
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()
	if email == "" || password == "" {
		m.errMsg = "email and password are required"
		return m, nil
	}

	m.submitting = true
	m.errMsg = ""

	if m.mode == ModeLogin {
		return m, signInCmd(m.manager, email, password)
	}
	return m, signUpCmd(
		m.manager,
		email,
		password,
		m.inputs[fieldConfirm].Value(),
		strings.TrimSpace(m.inputs[fieldDisplayName].Value()),
	)
}

// updateFocused routes remaining messages into the focused text input.
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}
