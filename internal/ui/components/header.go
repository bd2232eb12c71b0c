// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the shared visual components for the
// nutrismart TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/nutrismart-tui/internal/ui/styles"
	"github.com/jeranaias/nutrismart-tui/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Page identifies one of the app's screens.
type Page int

const (
	PageChat Page = iota
	PageDashboard
	PageAuth
)

// String returns the tab label for the page.
func (p Page) String() string {
	switch p {
	case PageChat:
		return "Chat"
	case PageDashboard:
		return "Dashboard"
	case PageAuth:
		return "Sign In"
	default:
		return "Unknown"
	}
}

// Header is the top bar: brand, page tabs and the signed-in identity.
type Header struct {
	Active    Page
	UserLabel string // empty while signed out
	Anonymous bool
	Width     int
	theme     *styles.Theme
}

// NewHeader creates a header component.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Active: PageChat,
		Width:  80,
		theme:  theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetIdentity updates the displayed identity.
func (h *Header) SetIdentity(label string, anonymous bool) {
	h.UserLabel = label
	h.Anonymous = anonymous
}

// maxIdentityWidth caps the identity label so a long display name or email
// cannot crowd out the tabs.
const maxIdentityWidth = 32

// View renders the header line.
func (h *Header) View() string {
	brand := h.theme.HeaderBrand.Render("NutriSmart")

	var tabs []string
	for _, page := range []Page{PageChat, PageDashboard} {
		if page == h.Active {
			tabs = append(tabs, h.theme.TabActive.Render(page.String()))
		} else {
			tabs = append(tabs, h.theme.Tab.Render(page.String()))
		}
	}

	label := util.TruncateWidth(h.UserLabel, maxIdentityWidth)
	identity := ""
	switch {
	case label == "":
		identity = h.theme.HeaderUser.Render("signing in...")
	case h.Anonymous:
		identity = h.theme.HeaderUser.Render("guest " + label)
	default:
		identity = h.theme.HeaderUser.Render(label)
	}

	left := brand + "  " + strings.Join(tabs, " ")

	// The content must fit inside the style's own padding or lipgloss
	// wraps the line.
	avail := h.Width - h.theme.Header.GetHorizontalFrameSize()
	gap := avail - lipgloss.Width(left) - lipgloss.Width(identity)
	if gap < 1 {
		// Narrow terminal: drop the identity before the tabs.
		identity = ""
		gap = avail - lipgloss.Width(left)
		if gap < 1 {
			gap = 1
		}
	}

	line := left + strings.Repeat(" ", gap) + identity
	return h.theme.Header.Width(h.Width).Render(line)
}
