// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{name: "short string unchanged", input: "spinach", maxRunes: 10, want: "spinach"},
		{name: "exact length unchanged", input: "kale", maxRunes: 4, want: "kale"},
		{name: "truncated with ellipsis", input: "whole wheat flour", maxRunes: 10, want: "whole w..."},
		{name: "unicode safe", input: "日本語のテキスト", maxRunes: 5, want: "日本..."},
		{name: "zero max", input: "milk", maxRunes: 0, want: ""},
		{name: "tiny max no ellipsis", input: "milk", maxRunes: 2, want: "mi"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TruncateRunes(tc.input, tc.maxRunes)
			if got != tc.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.maxRunes, got, tc.want)
			}
		})
	}
}

func TestTruncateWidth_DoubleWidth(t *testing.T) {
	// Each CJK rune is 2 columns wide; 6 columns fit three runes.
	got := TruncateWidth("豆腐白菜", 6)
	if got == "豆腐白菜" {
		t.Error("expected truncation for string wider than 6 columns")
	}
}

func TestPadWidth(t *testing.T) {
	if got := PadWidth("oats", 8); got != "oats    " {
		t.Errorf("PadWidth = %q", got)
	}
	if got := PadWidth("overlong", 4); got != "overlong" {
		t.Errorf("PadWidth should not shorten, got %q", got)
	}
}

func TestCollapseNewlines(t *testing.T) {
	got := CollapseNewlines("a\r\nb\nc\rd")
	if got != "a b c d" {
		t.Errorf("CollapseNewlines = %q", got)
	}
}

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "state.json")

	if err := AtomicWriteFile(path, []byte(`{"ok":true}`), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("unexpected content: %s", data)
	}

	// Overwrite must replace, not append.
	if err := AtomicWriteFile(path, []byte("v2"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile overwrite failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "v2" {
		t.Errorf("overwrite content = %s, want v2", data)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if e.Name() != "state.json" {
			t.Errorf("leftover file %s", e.Name())
		}
	}
}
