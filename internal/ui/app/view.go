// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/nutrismart-tui/internal/ui/components"
)

// chromeHeight is the vertical space the header and status bar take from
// every screen.
const chromeHeight = 3

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "starting..."
	}

	var page string
	switch m.page {
	case components.PageAuth:
		page = m.authView.View()
	case components.PageDashboard:
		page = m.dashView.View()
	default:
		page = m.chatView.View()
	}

	parts := []string{m.header.View()}
	if m.banner.Visible() {
		parts = append(parts, m.banner.View())
	}
	parts = append(parts, page, m.statusBar.View())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
