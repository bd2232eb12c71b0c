// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatview

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nutrismart-tui/internal/export"
	"github.com/jeranaias/nutrismart-tui/internal/gateway"
)

// Update handles messages for the chat screen.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case SendResultMsg:
		m.sending = false
		if msg.Err != nil && !errors.Is(msg.Err, gateway.ErrBusy) {
			m.errMsg = msg.Err.Error()
		}
		return m, nil

	case ExportResultMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
		} else {
			m.statusMsg = "transcript written to " + msg.Path
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, m.updateComponents(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.submit()

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, m.updateComponents(msg)
}

func (m *Model) submit() (*Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.errMsg = ""
	m.statusMsg = ""

	if strings.HasPrefix(text, "/") {
		m.input.SetValue("")
		return m, m.runCommand(text)
	}

	if m.sending {
		return m, nil // one send at a time; keep the draft in the input
	}
	m.sending = true
	m.input.SetValue("")
	return m, sendCmd(m.gateway, text)
}

// runCommand dispatches a slash command.
func (m *Model) runCommand(text string) tea.Cmd {
	fields := strings.Fields(text)
	switch fields[0] {
	case "/export":
		format := "markdown"
		if len(fields) > 1 {
			format = strings.ToLower(fields[1])
		}
		return m.exportCmd(format)

	case "/help":
		m.statusMsg = "commands: /export [markdown|json], /help"
		return nil

	default:
		m.errMsg = fmt.Sprintf("unknown command %q (try /help)", fields[0])
		return nil
	}
}

// transcript snapshots the conversation for export.
func (m *Model) transcript() *export.Transcript {
	return &export.Transcript{Owner: m.owner, Messages: m.collections.Messages()}
}

func (m *Model) exportCmd(format string) tea.Cmd {
	transcript := m.transcript()

	switch format {
	case "markdown", "md":
		return func() tea.Msg {
			path, err := export.ExportMarkdown(transcript, nil)
			return ExportResultMsg{Path: path, Err: err}
		}
	case "json":
		return func() tea.Msg {
			path, err := export.ExportJSON(transcript, nil)
			return ExportResultMsg{Path: path, Err: err}
		}
	default:
		m.errMsg = fmt.Sprintf("unknown export format %q (markdown or json)", format)
		return nil
	}
}

// updateComponents routes remaining messages into the input and viewport.
// Key presses go to the input only; scrolling keys are routed explicitly in
// handleKey so typing never scrolls the transcript.
func (m *Model) updateComponents(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if _, isKey := msg.(tea.KeyMsg); isKey {
		m.input, cmd = m.input.Update(msg)
		return cmd
	}

	var cmds []tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}
