// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/nutrismart-tui/internal/model"
	"github.com/jeranaias/nutrismart-tui/internal/ui/styles"
	"github.com/jeranaias/nutrismart-tui/internal/util"
)

// View renders the dashboard.
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.renderGoals())
	sb.WriteString("\n")
	sb.WriteString(m.renderInventory())
	sb.WriteString("\n")
	sb.WriteString(m.renderReceipts())
	sb.WriteString("\n")

	switch m.mode {
	case modeAddGoal:
		sb.WriteString(m.renderAddGoalForm())
	case modeAddItem:
		sb.WriteString(m.renderAddItemForm())
	case modeConfirmDelete:
		sb.WriteString(m.theme.ConfirmPrompt.Render("Remove \"" + m.deleteTarget + "\"? (y/n)"))
		sb.WriteString("\n")
	default:
		sb.WriteString(m.renderHints())
	}

	if m.errMsg != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.RenderError(m.errMsg))
	} else if m.statusMsg != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.RenderSuccess(m.statusMsg))
	}

	return m.theme.Container.Render(sb.String())
}

// =============================================================================
// PANELS
// =============================================================================

func (m *Model) sectionTitle(s Section) string {
	title := s.String()
	if s == m.section {
		title = "» " + title
	} else {
		title = "  " + title
	}
	return m.theme.SectionTitle.Render(title)
}

func (m *Model) renderRow(s Section, idx int, text string) string {
	if s == m.section && idx == m.cursor[s] && m.mode == modeBrowse {
		return m.theme.ListSelected.Render(text)
	}
	return m.theme.ListItem.Render(text)
}

func (m *Model) renderGoals() string {
	profile := m.collections.Profile()
	nutrients := profile.Nutrients()

	lines := []string{m.sectionTitle(SectionGoals)}
	if len(nutrients) == 0 {
		lines = append(lines, m.theme.ListItem.Render("no goals set"))
	}

	// Pad the nutrient column so the levels line up.
	nameWidth := 0
	for _, n := range nutrients {
		if w := lipgloss.Width(n); w > nameWidth {
			nameWidth = w
		}
	}
	for i, nutrient := range nutrients {
		row := util.PadWidth(nutrient+":", nameWidth+1) + " " + profile[nutrient]
		lines = append(lines, m.renderRow(SectionGoals, i, row))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderInventory() string {
	items := m.collections.Inventory()

	lines := []string{m.sectionTitle(SectionInventory)}
	if len(items) == 0 {
		lines = append(lines, m.theme.ListItem.Render("pantry is empty"))
	}
	for i, it := range items {
		lines = append(lines, m.renderRow(SectionInventory, i, it.Name+" ("+it.Quantity+")"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderReceipts() string {
	lines := []string{m.sectionTitle(SectionBills)}
	if len(m.receipts) == 0 {
		lines = append(lines, m.theme.ListItem.Render("no receipts waiting"))
	}
	for i, r := range m.receipts {
		lines = append(lines, m.renderRow(SectionBills, i, r.Name))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// =============================================================================
// FORMS
// =============================================================================

func (m *Model) picker(options []string, idx int, focused bool) string {
	value := "< " + options[idx] + " >"
	if focused {
		return m.theme.FormFocused.Render(value)
	}
	return m.theme.OptionPicker.Render(value)
}

func (m *Model) renderAddGoalForm() string {
	nutrient := m.picker(model.NutrientOptions, m.nutrientIdx, m.goalFocus == 0)
	level := m.picker(model.LevelOptions, m.levelIdx, m.goalFocus == 1)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.SectionTitle.Render("Add goal"),
		m.theme.FormLabel.Render("Nutrient ")+nutrient,
		m.theme.FormLabel.Render("Level    ")+level,
		m.theme.ShortcutDesc.Render("←/→ change · tab switch · enter save · esc cancel"),
	)
}

func (m *Model) renderAddItemForm() string {
	unit := m.picker(model.QuantityUnits, m.unitIdx, m.itemFocus == 2)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.SectionTitle.Render("Add pantry item"),
		m.theme.FormLabel.Render("Name   ")+m.nameInput.View(),
		m.theme.FormLabel.Render("Amount ")+m.qtyInput.View(),
		m.theme.FormLabel.Render("Unit   ")+unit,
		m.theme.ShortcutDesc.Render("tab switch field · enter save · esc cancel"),
	)
}

func (m *Model) renderHints() string {
	hints := []string{"tab section", "↑/↓ select", "a add", "d remove"}
	if m.section == SectionBills {
		hints = []string{"tab section", "↑/↓ select", "enter submit"}
	}

	var sb strings.Builder
	for i, h := range hints {
		if i > 0 {
			sb.WriteString("  ")
		}
		key, desc, _ := strings.Cut(h, " ")
		sb.WriteString(m.theme.ShortcutKey.Render(key))
		sb.WriteString(" ")
		sb.WriteString(m.theme.ShortcutDesc.Render(desc))
	}
	return sb.String()
}
