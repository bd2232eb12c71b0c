// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nutrismart-tui/internal/auth"
	"github.com/jeranaias/nutrismart-tui/internal/ui/authview"
	"github.com/jeranaias/nutrismart-tui/internal/ui/chatview"
	"github.com/jeranaias/nutrismart-tui/internal/ui/components"
	"github.com/jeranaias/nutrismart-tui/internal/ui/dashview"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SessionMsg:
		m.applySession(msg.Session)
		return m, m.waitSession()

	case SyncMsg:
		m.chatView.Refresh()
		m.dashView.Refresh()
		m.statusBar.Stale = m.collections.Status().Err() != nil
		return m, m.waitSync()

	case bootstrapMsg:
		if msg.Err != nil {
			// Guest sign-in failed; fall back to the explicit sign-in form.
			m.banner.Show(msg.Err)
			m.showAuth()
		}
		return m, nil

	case dashview.ReceiptMsg:
		_, cmd := m.dashView.Update(msg)
		return m, tea.Batch(cmd, m.waitReceipt())

	// Operation results go to the screen that started them even if the user
	// has switched pages in the meantime.
	case dashview.OpResultMsg:
		_, cmd := m.dashView.Update(msg)
		return m, cmd

	case chatview.SendResultMsg, chatview.ExportResultMsg:
		_, cmd := m.chatView.Update(msg)
		return m, cmd

	case authview.ResultMsg:
		_, cmd := m.authView.Update(msg)
		return m, cmd
	}

	return m, m.routeToPage(msg)
}

// routeToPage forwards a message to the active screen only.
func (m *Model) routeToPage(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.page {
	case components.PageAuth:
		_, cmd = m.authView.Update(msg)
	case components.PageChat:
		_, cmd = m.chatView.Update(msg)
	case components.PageDashboard:
		_, cmd = m.dashView.Update(msg)
	}
	return cmd
}

// =============================================================================
// KEYS
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.Close()
		return m, tea.Quit
	}

	// The auth form owns most of its key bindings; everywhere else these
	// are global.
	if m.page != components.PageAuth {
		switch msg.String() {
		case "ctrl+t":
			m.togglePage()
			return m, nil
		case "ctrl+l":
			m.showAuth()
			return m, nil
		case "ctrl+o":
			return m, signOutCmd(m.manager)
		case "esc":
			if m.banner.Visible() {
				m.banner.Clear()
				return m, nil
			}
		}
	} else if msg.String() == "esc" {
		// Leave the sign-in form without authenticating.
		m.page = components.PageChat
		m.header.Active = components.PageChat
		m.statusBar.SetShortcuts(m.shortcuts())
		return m, nil
	}

	return m, m.routeToPage(msg)
}

func (m *Model) togglePage() {
	if m.page == components.PageChat {
		m.page = components.PageDashboard
		m.dashView.Refresh()
	} else {
		m.page = components.PageChat
		m.chatView.Refresh()
	}
	m.header.Active = m.page
	m.statusBar.SetShortcuts(m.shortcuts())
}

// =============================================================================
// SESSION CHANGES
// =============================================================================

// applySession reacts to a session change from the auth manager: it swaps
// the realtime subscriptions and updates the chrome. A new session forces
// the chat page; a sign-out resets the auth form but leaves the user on
// whatever page they were viewing.
func (m *Model) applySession(sess *auth.Session) {
	m.collections.Swap(sess)

	if sess == nil {
		m.header.SetIdentity("", false)
		m.chatView.SetOwner("")
		m.authView.Reset()
		m.statusBar.SetShortcuts(m.shortcuts())
		return
	}

	if sess.IsAnonymous {
		m.header.SetIdentity(sess.ShortID(), true)
	} else {
		m.header.SetIdentity(sess.Label(), false)
	}
	m.chatView.SetOwner(sess.Label())
	m.banner.Clear()

	if m.page == components.PageAuth {
		m.page = components.PageChat
		m.header.Active = components.PageChat
	}
	m.statusBar.SetShortcuts(m.shortcuts())
	m.chatView.Refresh()
	m.dashView.Refresh()
}

// showAuth moves to the sign-in form. The current identity stays in the
// header; a guest upgrading to an account is still signed in meanwhile.
func (m *Model) showAuth() {
	m.page = components.PageAuth
	m.header.Active = components.PageAuth
	m.authView.Reset()
	m.statusBar.SetShortcuts(m.shortcuts())
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)
	m.header.SetWidth(width)
	m.statusBar.SetWidth(width)

	content := height - chromeHeight
	if content < 1 {
		content = 1
	}
	m.authView.SetSize(width, content)
	m.chatView.SetSize(width, content)
	m.dashView.SetSize(width, content)
	m.chatView.Refresh()
}

func (m *Model) shortcuts() []components.Shortcut {
	switch m.page {
	case components.PageAuth:
		return []components.Shortcut{
			{Key: "enter", Desc: "submit"},
			{Key: "ctrl+t", Desc: "login/signup"},
			{Key: "ctrl+g", Desc: "guest"},
			{Key: "esc", Desc: "back"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	case components.PageDashboard:
		return []components.Shortcut{
			{Key: "ctrl+t", Desc: "chat"},
			{Key: "tab", Desc: "section"},
			{Key: "a", Desc: "add"},
			{Key: "d", Desc: "remove"},
			{Key: "ctrl+o", Desc: "sign out"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	default:
		return []components.Shortcut{
			{Key: "enter", Desc: "send"},
			{Key: "/help", Desc: "commands"},
			{Key: "ctrl+t", Desc: "dashboard"},
			{Key: "ctrl+l", Desc: "sign in"},
			{Key: "ctrl+o", Desc: "sign out"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	}
}
