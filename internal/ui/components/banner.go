// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/jeranaias/nutrismart-tui/internal/ui/styles"
	"github.com/jeranaias/nutrismart-tui/internal/util"
)

// maxBannerRunes caps banner text. Backend errors sometimes echo a whole
// response body; the banner is one line.
const maxBannerRunes = 200

// =============================================================================
// ERROR BANNER COMPONENT
// =============================================================================

// ErrorBanner shows the most recent operation failure until dismissed or
// replaced. One line, no stack of toasts.
type ErrorBanner struct {
	message string
	theme   *styles.Theme
}

// NewErrorBanner creates an empty banner.
func NewErrorBanner(theme *styles.Theme) *ErrorBanner {
	return &ErrorBanner{theme: theme}
}

// Show replaces the displayed error.
func (b *ErrorBanner) Show(err error) {
	if err == nil {
		return
	}
	b.message = util.TruncateRunes(util.CollapseNewlines(err.Error()), maxBannerRunes)
}

// Clear dismisses the banner.
func (b *ErrorBanner) Clear() {
	b.message = ""
}

// Visible reports whether there is something to show.
func (b *ErrorBanner) Visible() bool {
	return b.message != ""
}

// View renders the banner, or an empty string when clear.
func (b *ErrorBanner) View() string {
	if b.message == "" {
		return ""
	}
	return b.theme.ErrorBox.Render(styles.StatusIndicators.Error + " " + b.message)
}
