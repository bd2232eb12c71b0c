// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashview provides the dashboard screen: nutrient goals, pantry
// inventory and the receipt inbox.
package dashview

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nutrismart-tui/internal/bills"
	"github.com/jeranaias/nutrismart-tui/internal/gateway"
	"github.com/jeranaias/nutrismart-tui/internal/model"
	"github.com/jeranaias/nutrismart-tui/internal/realtime"
	"github.com/jeranaias/nutrismart-tui/internal/ui/styles"
)

// opTimeout bounds one mutation round trip.
const opTimeout = 30 * time.Second

// Section identifies one dashboard panel.
type Section int

const (
	SectionGoals Section = iota
	SectionInventory
	SectionBills
	sectionCount
)

// String returns the panel title.
func (s Section) String() string {
	switch s {
	case SectionGoals:
		return "Nutrient Goals"
	case SectionInventory:
		return "Pantry"
	case SectionBills:
		return "Receipts"
	default:
		return "Unknown"
	}
}

// mode is the dashboard's input mode.
type mode int

const (
	modeBrowse mode = iota
	modeAddGoal
	modeAddItem
	modeConfirmDelete
)

// =============================================================================
// MESSAGES
// =============================================================================

// OpResultMsg reports a completed mutation.
type OpResultMsg struct {
	Status string // shown on success
	Err    error
}

// ReceiptMsg delivers a receipt from the inbox watcher.
type ReceiptMsg struct {
	Receipt bills.Receipt
}

// receiptSubmittedMsg reports a finished receipt upload.
type receiptSubmittedMsg struct {
	Path string
	Err  error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	theme       *styles.Theme
	gateway     *gateway.Gateway
	collections *realtime.Collections
	inbox       *bills.Inbox // nil when the receipt inbox is disabled

	section Section
	mode    mode

	// browse cursors, one per section
	cursor [sectionCount]int

	// add-goal form
	nutrientIdx int
	levelIdx    int
	goalFocus   int // 0 nutrient, 1 level

	// add-item form
	nameInput textinput.Model
	qtyInput  textinput.Model
	unitIdx   int
	itemFocus int // 0 name, 1 quantity, 2 unit

	// pending confirmation target
	deleteTarget string

	// receipts waiting to be submitted
	receipts []bills.Receipt

	statusMsg string
	errMsg    string

	width  int
	height int
}

// New creates the dashboard screen. inbox may be nil.
func New(theme *styles.Theme, gw *gateway.Gateway, collections *realtime.Collections, inbox *bills.Inbox) *Model {
	name := textinput.New()
	name.Placeholder = "item name"
	name.Prompt = "> "
	name.PromptStyle = theme.InputPrompt
	name.PlaceholderStyle = theme.InputPlaceholder
	name.CharLimit = 64

	qty := textinput.New()
	qty.Placeholder = "amount"
	qty.Prompt = "> "
	qty.PromptStyle = theme.InputPrompt
	qty.PlaceholderStyle = theme.InputPlaceholder
	qty.CharLimit = 16

	return &Model{
		theme:       theme,
		gateway:     gw,
		collections: collections,
		inbox:       inbox,
		nameInput:   name,
		qtyInput:    qty,
	}
}

// Init is a no-op; the dashboard renders from mirrored state.
func (m *Model) Init() tea.Cmd {
	return nil
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.nameInput.Width = min(32, width-8)
	m.qtyInput.Width = 12
}

// Refresh clamps cursors after the mirrored state changed under us.
func (m *Model) Refresh() {
	goals := m.collections.Profile().Nutrients()
	items := m.collections.Inventory()
	m.clampCursor(SectionGoals, len(goals))
	m.clampCursor(SectionInventory, len(items))
	m.clampCursor(SectionBills, len(m.receipts))
}

func (m *Model) clampCursor(s Section, n int) {
	if m.cursor[s] >= n {
		m.cursor[s] = max(n-1, 0)
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

func updateProfileCmd(gw *gateway.Gateway, profile model.Profile, status string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		return OpResultMsg{Status: status, Err: gw.UpdateProfile(ctx, profile)}
	}
}

func addItemCmd(gw *gateway.Gateway, name, quantity string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		return OpResultMsg{Status: "added " + name, Err: gw.AddInventoryItem(ctx, name, quantity)}
	}
}

func removeItemCmd(gw *gateway.Gateway, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		return OpResultMsg{Status: "removed " + name, Err: gw.RemoveInventoryItem(ctx, name)}
	}
}

func submitReceiptCmd(gw *gateway.Gateway, receipt bills.Receipt) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		err := gw.SubmitBill(ctx, json.RawMessage(receipt.Content))
		return receiptSubmittedMsg{Path: receipt.Path, Err: err}
	}
}
