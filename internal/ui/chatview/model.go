// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatview provides the conversation screen: the message transcript,
// the input line and the slash commands.
package chatview

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/nutrismart-tui/internal/gateway"
	"github.com/jeranaias/nutrismart-tui/internal/realtime"
	"github.com/jeranaias/nutrismart-tui/internal/ui/styles"
)

// sendTimeout bounds one chat round trip, model reply included.
const sendTimeout = 120 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// SendResultMsg reports a completed send.
type SendResultMsg struct {
	Err error
}

// ExportResultMsg reports a completed transcript export.
type ExportResultMsg struct {
	Path string
	Err  error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	theme       *styles.Theme
	gateway     *gateway.Gateway
	collections *realtime.Collections

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// renderer is the glamour markdown renderer for assistant replies. nil
	// when the terminal could not be probed; plain text is shown instead.
	renderer      *glamour.TermRenderer
	markdownWidth int

	sending   bool
	statusMsg string
	errMsg    string
	owner     string // labels exported transcripts; empty when signed out

	width  int
	height int
}

// New creates the chat screen.
func New(theme *styles.Theme, gw *gateway.Gateway, collections *realtime.Collections, markdownWidth int) *Model {
	in := textinput.New()
	in.Placeholder = "Ask about meals, nutrients, or your pantry..."
	in.Prompt = "> "
	in.PromptStyle = theme.InputPrompt
	in.TextStyle = theme.InputText
	in.PlaceholderStyle = theme.InputPlaceholder
	in.CharLimit = 2000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	m := &Model{
		theme:         theme,
		gateway:       gw,
		collections:   collections,
		viewport:      viewport.New(80, 20),
		input:         in,
		spinner:       sp,
		markdownWidth: markdownWidth,
	}
	m.initRenderer()
	return m
}

func (m *Model) initRenderer() {
	width := m.markdownWidth
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		m.renderer = renderer
	}
}

// Init starts the spinner tick.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetSize lays the transcript and input out for the terminal size. The
// caller reserves header and status bar rows.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	inputHeight := 3
	m.viewport.Width = width
	m.viewport.Height = max(height-inputHeight, 1)
	m.input.Width = width - 6

	m.Refresh()
}

// SetOwner records who the conversation belongs to. The label ends up in
// exported transcripts.
func (m *Model) SetOwner(owner string) {
	m.owner = owner
}

// Refresh re-renders the transcript from the mirrored collection and keeps
// the view pinned to the latest message.
func (m *Model) Refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// =============================================================================
// COMMANDS
// =============================================================================

func sendCmd(gw *gateway.Gateway, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		return SendResultMsg{Err: gw.SendMessage(ctx, text)}
	}
}
