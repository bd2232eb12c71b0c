// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewThemeInitializesStyles(t *testing.T) {
	theme := NewTheme("dark")

	// A zero-value style renders its input unchanged; the brand style must
	// at least survive rendering.
	if got := theme.HeaderBrand.Render("NutriSmart"); !strings.Contains(got, "NutriSmart") {
		t.Errorf("header brand lost its text: %q", got)
	}

	theme.SetSize(120, 40)
	if theme.Width != 120 || theme.Height != 40 {
		t.Errorf("SetSize not recorded: %dx%d", theme.Width, theme.Height)
	}
}

func TestThemeModeForcesBackground(t *testing.T) {
	if theme := NewTheme("dark"); !theme.IsDark {
		t.Error("dark mode did not force a dark background")
	}
	if theme := NewTheme("light"); theme.IsDark {
		t.Error("light mode did not force a light background")
	}
}

func TestStatusIndicatorsAreASCII(t *testing.T) {
	for _, s := range []string{
		StatusIndicators.Success,
		StatusIndicators.Error,
		StatusIndicators.Warning,
		StatusIndicators.Info,
		StatusIndicators.Pending,
		StatusIndicators.Active,
	} {
		for _, r := range s {
			if r > 127 {
				t.Errorf("indicator %q is not ASCII", s)
			}
		}
	}
}

func TestRenderHelpersIncludeShapeIndicators(t *testing.T) {
	if got := RenderSuccess("saved"); !strings.Contains(got, "[OK]") {
		t.Errorf("success missing shape indicator: %q", got)
	}
	if got := RenderError("failed"); !strings.Contains(got, "[X]") {
		t.Errorf("error missing shape indicator: %q", got)
	}
	if got := RenderWarning("stale"); !strings.Contains(got, "[!]") {
		t.Errorf("warning missing shape indicator: %q", got)
	}
}
