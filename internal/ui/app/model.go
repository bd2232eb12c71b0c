// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root Bubble Tea model: it owns the screens, routes
// messages between them and reacts to session and sync changes.
package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nutrismart-tui/internal/auth"
	"github.com/jeranaias/nutrismart-tui/internal/bills"
	"github.com/jeranaias/nutrismart-tui/internal/gateway"
	"github.com/jeranaias/nutrismart-tui/internal/realtime"
	"github.com/jeranaias/nutrismart-tui/internal/ui/authview"
	"github.com/jeranaias/nutrismart-tui/internal/ui/chatview"
	"github.com/jeranaias/nutrismart-tui/internal/ui/components"
	"github.com/jeranaias/nutrismart-tui/internal/ui/dashview"
	"github.com/jeranaias/nutrismart-tui/internal/ui/styles"
)

// bootstrapTimeout bounds the automatic guest sign-in at startup.
const bootstrapTimeout = 30 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// SessionMsg delivers a session change from the auth manager.
type SessionMsg struct {
	Session *auth.Session
}

// SyncMsg delivers a realtime state-change notification.
type SyncMsg struct {
	Event realtime.Event
}

// bootstrapMsg reports the automatic guest sign-in. The session itself
// arrives through the watch channel; only the failure matters here.
type bootstrapMsg struct {
	Err error
}

// =============================================================================
// ROOT MODEL
// =============================================================================

// Model is the application root.
type Model struct {
	theme       *styles.Theme
	manager     *auth.Manager
	collections *realtime.Collections
	inbox       *bills.Inbox // nil when the receipt inbox is disabled

	header    *components.Header
	statusBar *components.StatusBar
	banner    *components.ErrorBanner

	page     components.Page
	authView *authview.Model
	chatView *chatview.Model
	dashView *dashview.Model

	sessions    <-chan *auth.Session
	cancelWatch func()

	width  int
	height int
}

// New wires up the root model. inbox may be nil. markdownWidth is the wrap
// width for rendered assistant replies.
func New(theme *styles.Theme, manager *auth.Manager, gw *gateway.Gateway, collections *realtime.Collections, inbox *bills.Inbox, markdownWidth int) *Model {
	sessions, cancelWatch := manager.Watch()

	m := &Model{
		theme:       theme,
		manager:     manager,
		collections: collections,
		inbox:       inbox,
		header:      components.NewHeader(theme),
		statusBar:   components.NewStatusBar(theme),
		banner:      components.NewErrorBanner(theme),
		page:        components.PageChat,
		authView:    authview.New(theme, manager),
		chatView:    chatview.New(theme, gw, collections, markdownWidth),
		dashView:    dashview.New(theme, gw, collections, inbox),
		sessions:    sessions,
		cancelWatch: cancelWatch,
	}
	m.statusBar.SetShortcuts(m.shortcuts())
	return m
}

// Init starts the channel pumps and the automatic guest sign-in.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.waitSession(),
		m.waitSync(),
		bootstrapCmd(m.manager),
	}
	if m.inbox != nil {
		cmds = append(cmds, m.waitReceipt())
	}
	return tea.Batch(cmds...)
}

// Close releases the session watcher.
func (m *Model) Close() {
	m.cancelWatch()
}

// =============================================================================
// CHANNEL PUMPS
// =============================================================================

// Each pump waits for one value and re-arms itself from Update. A closed
// channel ends the pump by returning nil.

func (m *Model) waitSession() tea.Cmd {
	ch := m.sessions
	return func() tea.Msg {
		sess, ok := <-ch
		if !ok {
			return nil
		}
		return SessionMsg{Session: sess}
	}
}

func (m *Model) waitSync() tea.Cmd {
	ch := m.collections.Events()
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return SyncMsg{Event: ev}
	}
}

func (m *Model) waitReceipt() tea.Cmd {
	ch := m.inbox.Receipts()
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return dashview.ReceiptMsg{Receipt: r}
	}
}

func bootstrapCmd(manager *auth.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
		defer cancel()

		_, err := manager.SignInAnonymously(ctx)
		return bootstrapMsg{Err: err}
	}
}

func signOutCmd(manager *auth.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
		defer cancel()

		manager.SignOut(ctx)
		return nil
	}
}
