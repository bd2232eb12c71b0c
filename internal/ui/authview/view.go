// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package authview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/nutrismart-tui/internal/ui/styles"
)

// View renders the auth screen.
func (m *Model) View() string {
	var sb strings.Builder

	title := "Sign In"
	if m.mode == ModeSignup {
		title = "Create Account"
	}
	sb.WriteString(m.theme.SectionTitle.Render(title))
	sb.WriteString("\n\n")

	labels := [fieldCount]string{"Email", "Password", "Confirm", "Name"}
	for i := 0; i < fieldCount; i++ {
		if !m.fieldVisible(i) {
			continue
		}
		label := m.theme.FormLabel.Render(labels[i])
		if i == m.focus {
			label = m.theme.FormFocused.Render(labels[i])
		}
		sb.WriteString(label)
		sb.WriteString("\n")
		sb.WriteString(m.inputs[i].View())
		sb.WriteString("\n\n")
	}

	if m.submitting {
		sb.WriteString(m.spinner.View())
		sb.WriteString(m.theme.ThinkingText.Render(" contacting the identity service..."))
		sb.WriteString("\n\n")
	} else if m.errMsg != "" {
		sb.WriteString(styles.RenderError(m.errMsg))
		sb.WriteString("\n\n")
	}

	toggle := "ctrl+t create account"
	if m.mode == ModeSignup {
		toggle = "ctrl+t back to sign in"
	}
	hints := []string{
		m.theme.ShortcutKey.Render("enter") + m.theme.ShortcutDesc.Render(" submit"),
		m.theme.ShortcutKey.Render("tab") + m.theme.ShortcutDesc.Render(" next field"),
		m.theme.ShortcutDesc.Render(toggle),
		m.theme.ShortcutKey.Render("ctrl+g") + m.theme.ShortcutDesc.Render(" continue as guest"),
	}
	sb.WriteString(strings.Join(hints, "  "))

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Green).
		Padding(1, 3).
		Render(sb.String())

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
