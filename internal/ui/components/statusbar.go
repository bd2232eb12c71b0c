// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/nutrismart-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Shortcut is one key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the bottom bar: key hints on the left, sync health on the
// right.
type StatusBar struct {
	Shortcuts []Shortcut
	Width     int

	// Stale is set when a subscription has failed and the screen shows the
	// last known data.
	Stale bool

	theme *styles.Theme
}

// NewStatusBar creates a status bar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetShortcuts replaces the displayed key hints.
func (s *StatusBar) SetShortcuts(shortcuts []Shortcut) {
	s.Shortcuts = shortcuts
}

// View renders the status bar line.
func (s *StatusBar) View() string {
	var hints []string
	for _, sc := range s.Shortcuts {
		hints = append(hints,
			s.theme.ShortcutKey.Render(sc.Key)+" "+s.theme.ShortcutDesc.Render(sc.Desc))
	}
	left := strings.Join(hints, "  ")

	var sync string
	if s.Stale {
		sync = s.theme.SyncStale.Render(styles.StatusIndicators.Warning + " sync lost")
	} else {
		sync = s.theme.SyncLive.Render(styles.StatusIndicators.Active + " live")
	}

	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(sync) - 2
	if gap < 1 {
		gap = 1
	}
	return s.theme.StatusBar.Width(s.Width).Render(left + strings.Repeat(" ", gap) + sync)
}
