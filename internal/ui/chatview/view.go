// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/nutrismart-tui/internal/model"
	"github.com/jeranaias/nutrismart-tui/internal/ui/styles"
)

// View renders the chat screen.
func (m *Model) View() string {
	var footer strings.Builder
	if m.sending {
		footer.WriteString(m.spinner.View())
		footer.WriteString(m.theme.ThinkingText.Render(" NutriSmart is thinking..."))
		footer.WriteString("\n")
	} else if m.errMsg != "" {
		footer.WriteString(styles.RenderError(m.errMsg))
		footer.WriteString("\n")
	} else if m.statusMsg != "" {
		footer.WriteString(styles.RenderSuccess(m.statusMsg))
		footer.WriteString("\n")
	}

	input := m.theme.InputContainer.Width(m.width).Render(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		footer.String()+input,
	)
}

// renderTranscript renders the full conversation for the viewport.
func (m *Model) renderTranscript() string {
	messages := m.collections.Messages()
	if len(messages) == 0 {
		return m.theme.ThinkingText.Render(
			"No messages yet. Ask about what to cook with your pantry, or how to hit your nutrient goals.")
	}

	var sb strings.Builder
	for _, msg := range messages {
		sb.WriteString(m.renderMessage(msg))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) renderMessage(msg model.ChatMessage) string {
	timeLabel := m.theme.BubbleTime.Render(msg.Time().Format("15:04"))

	switch msg.Role {
	case model.RoleUser:
		bubble := m.theme.UserBubble.Render(msg.Text)
		return lipgloss.JoinVertical(lipgloss.Right, bubble, timeLabel)

	case model.RoleAssistant:
		text := msg.Text
		if m.renderer != nil {
			if rendered, err := m.renderer.Render(msg.Text); err == nil {
				text = strings.TrimRight(rendered, "\n")
			}
		}
		bubble := m.theme.AssistantBubble.Render(text)
		parts := []string{bubble}
		if msg.RequiresAuth {
			parts = append(parts, m.theme.NoticeBubble.Render("Sign in to get answers tailored to your goals and pantry."))
		}
		parts = append(parts, timeLabel)
		return lipgloss.JoinVertical(lipgloss.Left, parts...)

	default:
		return m.theme.BubbleTime.Render(msg.Text)
	}
}
