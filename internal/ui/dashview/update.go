// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashview

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nutrismart-tui/internal/gateway"
	"github.com/jeranaias/nutrismart-tui/internal/model"
)

// Update handles messages for the dashboard.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case OpResultMsg:
		if msg.Err != nil {
			if !errors.Is(msg.Err, gateway.ErrBusy) {
				m.errMsg = msg.Err.Error()
			}
		} else {
			m.statusMsg = msg.Status
			m.errMsg = ""
		}
		return m, nil

	case ReceiptMsg:
		m.receipts = append(m.receipts, msg.Receipt)
		m.statusMsg = "receipt " + msg.Receipt.Name + " ready to submit"
		return m, nil

	case receiptSubmittedMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.removeReceipt(msg.Path)
		m.statusMsg = "receipt submitted; items will appear in the pantry shortly"
		if m.inbox != nil {
			if err := m.inbox.MarkProcessed(msg.Path); err != nil {
				m.errMsg = "receipt submitted but could not be archived: " + err.Error()
			}
		}
		return m, nil
	}

	return m, m.updateInputs(msg)
}

func (m *Model) removeReceipt(path string) {
	out := m.receipts[:0]
	for _, r := range m.receipts {
		if r.Path != path {
			out = append(out, r)
		}
	}
	m.receipts = out
	m.Refresh()
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch m.mode {
	case modeAddGoal:
		return m.handleAddGoalKey(msg)
	case modeAddItem:
		return m.handleAddItemKey(msg)
	case modeConfirmDelete:
		return m.handleConfirmKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m *Model) handleBrowseKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	m.statusMsg = ""

	switch msg.String() {
	case "tab", "right":
		m.section = (m.section + 1) % sectionCount
		return m, nil

	case "shift+tab", "left":
		m.section = (m.section + sectionCount - 1) % sectionCount
		return m, nil

	case "up", "k":
		if m.cursor[m.section] > 0 {
			m.cursor[m.section]--
		}
		return m, nil

	case "down", "j":
		m.cursor[m.section]++
		m.Refresh()
		return m, nil

	case "a", "n":
		return m.startAdd()

	case "d", "x", "backspace":
		return m.startDelete()

	case "enter":
		if m.section == SectionBills {
			return m.submitSelectedReceipt()
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) startAdd() (*Model, tea.Cmd) {
	m.errMsg = ""
	switch m.section {
	case SectionGoals:
		m.mode = modeAddGoal
		m.nutrientIdx = 0
		m.levelIdx = 0
		m.goalFocus = 0
	case SectionInventory:
		m.mode = modeAddItem
		m.itemFocus = 0
		m.unitIdx = 0
		m.nameInput.SetValue("")
		m.qtyInput.SetValue("")
		m.nameInput.Focus()
		m.qtyInput.Blur()
	}
	return m, nil
}

func (m *Model) startDelete() (*Model, tea.Cmd) {
	switch m.section {
	case SectionGoals:
		goals := m.collections.Profile().Nutrients()
		if len(goals) == 0 {
			return m, nil
		}
		m.deleteTarget = goals[m.cursor[SectionGoals]]
	case SectionInventory:
		items := m.collections.Inventory()
		if len(items) == 0 {
			return m, nil
		}
		m.deleteTarget = items[m.cursor[SectionInventory]].Name
	default:
		return m, nil
	}
	m.mode = modeConfirmDelete
	return m, nil
}

func (m *Model) submitSelectedReceipt() (*Model, tea.Cmd) {
	if len(m.receipts) == 0 {
		return m, nil
	}
	receipt := m.receipts[m.cursor[SectionBills]]
	m.statusMsg = "submitting " + receipt.Name + "..."
	return m, submitReceiptCmd(m.gateway, receipt)
}

// handleConfirmKey resolves a pending delete confirmation.
func (m *Model) handleConfirmKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		target := m.deleteTarget
		m.deleteTarget = ""
		m.mode = modeBrowse
		if m.section == SectionGoals {
			profile := m.collections.Profile().WithoutGoal(target)
			return m, updateProfileCmd(m.gateway, profile, "removed goal "+target)
		}
		return m, removeItemCmd(m.gateway, target)

	case "n", "N", "esc":
		m.deleteTarget = ""
		m.mode = modeBrowse
		return m, nil
	}
	return m, nil
}

// =============================================================================
// ADD GOAL FORM
// =============================================================================

func (m *Model) handleAddGoalKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		return m, nil

	case "tab", "shift+tab":
		m.goalFocus = 1 - m.goalFocus
		return m, nil

	case "left", "h":
		m.cycleGoalOption(-1)
		return m, nil

	case "right", "l":
		m.cycleGoalOption(1)
		return m, nil

	case "enter":
		m.mode = modeBrowse
		nutrient := model.NutrientOptions[m.nutrientIdx]
		level := model.LevelOptions[m.levelIdx]
		profile := m.collections.Profile().WithGoal(nutrient, level)
		return m, updateProfileCmd(m.gateway, profile, "goal set: "+nutrient+" "+level)
	}
	return m, nil
}

func (m *Model) cycleGoalOption(dir int) {
	if m.goalFocus == 0 {
		n := len(model.NutrientOptions)
		m.nutrientIdx = (m.nutrientIdx + dir + n) % n
	} else {
		n := len(model.LevelOptions)
		m.levelIdx = (m.levelIdx + dir + n) % n
	}
}

// =============================================================================
// ADD ITEM FORM
// =============================================================================

func (m *Model) handleAddItemKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		return m, nil

	case "tab":
		m.cycleItemFocus(1)
		return m, nil

	case "shift+tab":
		m.cycleItemFocus(-1)
		return m, nil

	case "left", "right":
		if m.itemFocus == 2 {
			dir := 1
			if msg.String() == "left" {
				dir = -1
			}
			n := len(model.QuantityUnits)
			m.unitIdx = (m.unitIdx + dir + n) % n
			return m, nil
		}

	case "enter":
		name := strings.TrimSpace(m.nameInput.Value())
		amount := strings.TrimSpace(m.qtyInput.Value())
		if name == "" || amount == "" {
			m.errMsg = "item name and amount are required"
			return m, nil
		}
		m.mode = modeBrowse
		quantity := amount + " " + model.QuantityUnits[m.unitIdx]
		return m, addItemCmd(m.gateway, name, quantity)
	}

	return m, m.updateInputs(msg)
}

func (m *Model) cycleItemFocus(dir int) {
	m.itemFocus = (m.itemFocus + dir + 3) % 3
	m.nameInput.Blur()
	m.qtyInput.Blur()
	switch m.itemFocus {
	case 0:
		m.nameInput.Focus()
	case 1:
		m.qtyInput.Focus()
	}
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	cmds = append(cmds, cmd)
	m.qtyInput, cmd = m.qtyInput.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}
