// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestSortMessages_Ascending(t *testing.T) {
	msgs := []ChatMessage{
		{Role: RoleUser, Text: "c", Timestamp: 3},
		{Role: RoleAssistant, Text: "a", Timestamp: 1},
		{Role: RoleUser, Text: "b", Timestamp: 2},
	}

	SortMessages(msgs)

	want := []int64{1, 2, 3}
	for i, m := range msgs {
		if m.Timestamp != want[i] {
			t.Errorf("position %d: timestamp = %d, want %d", i, m.Timestamp, want[i])
		}
	}
}

func TestNewAssistantMessage_OrdersAfterUser(t *testing.T) {
	user := NewUserMessage("what should I eat?")
	reply := NewAssistantMessage("more spinach", user.Timestamp, false)

	if reply.Timestamp != user.Timestamp+1 {
		t.Errorf("reply timestamp = %d, want %d", reply.Timestamp, user.Timestamp+1)
	}
	if reply.Role != RoleAssistant {
		t.Errorf("role = %s, want assistant", reply.Role)
	}
}

func TestHistorySummary(t *testing.T) {
	tests := []struct {
		name  string
		msgs  []ChatMessage
		want  string
		lines int
	}{
		{
			name: "role prefixed lines oldest first",
			msgs: []ChatMessage{
				{Role: RoleUser, Text: "hi", Timestamp: 1},
				{Role: RoleAssistant, Text: "hello", Timestamp: 2},
			},
			want:  "user: hi\nassistant: hello",
			lines: 2,
		},
		{
			name: "multi-line text collapsed",
			msgs: []ChatMessage{
				{Role: RoleAssistant, Text: "first\nsecond", Timestamp: 1},
			},
			want:  "assistant: first second",
			lines: 1,
		},
		{
			name:  "empty list",
			msgs:  nil,
			want:  "",
			lines: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := HistorySummary(tc.msgs)
			if got != tc.want {
				t.Errorf("HistorySummary = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestHistorySummary_WindowsLastTen(t *testing.T) {
	var msgs []ChatMessage
	for i := 0; i < 15; i++ {
		msgs = append(msgs, ChatMessage{Role: RoleUser, Text: string(rune('a' + i)), Timestamp: int64(i)})
	}

	got := HistorySummary(msgs)
	lines := strings.Split(got, "\n")
	if len(lines) != HistoryWindow {
		t.Fatalf("lines = %d, want %d", len(lines), HistoryWindow)
	}
	if lines[0] != "user: f" {
		t.Errorf("first line = %q, want the sixth message", lines[0])
	}
	if lines[len(lines)-1] != "user: o" {
		t.Errorf("last line = %q, want the newest message", lines[len(lines)-1])
	}
}

// =============================================================================
// INVENTORY TESTS
// =============================================================================

func TestMaterializeInventory_ExcludesRemoved(t *testing.T) {
	inv := Inventory{
		"spinach": {Quantity: "2 cups"},
		"milk":    {Quantity: "0"},            // legacy sentinel
		"butter":  {Quantity: "1 lbs", Deleted: true}, // tombstone
		"oats":    {Quantity: "500 g"},
	}

	items := MaterializeInventory(inv)

	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	// Sorted by name.
	if items[0].Name != "oats" || items[1].Name != "spinach" {
		t.Errorf("order = %s, %s; want oats, spinach", items[0].Name, items[1].Name)
	}
	for _, it := range items {
		if it.IsRemoved() {
			t.Errorf("removed item %s materialized", it.Name)
		}
	}
}

func TestMaterializeInventory_LastWriteWins(t *testing.T) {
	inv := Inventory{"spinach": {Quantity: "2 cups"}}

	// A later write tombstones the record; it must disappear from the list
	// even though the record itself remains.
	inv["spinach"] = InventoryItem{Quantity: "2 cups", Deleted: true}

	if got := MaterializeInventory(inv); len(got) != 0 {
		t.Errorf("materialized %d items, want 0", len(got))
	}
	if _, ok := inv["spinach"]; !ok {
		t.Error("record should still exist in the raw mapping")
	}
}

func TestItemKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Spinach ", "spinach"},
		{"Whole Wheat Flour", "whole wheat flour"},
		{"OATS", "oats"},
	}
	for _, tc := range tests {
		if got := ItemKey(tc.input); got != tc.want {
			t.Errorf("ItemKey(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

// =============================================================================
// PROFILE TESTS
// =============================================================================

func TestProfile_MergeAndRemove(t *testing.T) {
	p, err := ParseProfile(`{"Iron":"high"}`)
	if err != nil {
		t.Fatalf("ParseProfile failed: %v", err)
	}

	merged := p.WithGoal("Protein", "Low")
	if len(merged) != 2 || merged["Iron"] != "high" || merged["Protein"] != "Low" {
		t.Errorf("merged = %v, want Iron:high Protein:Low", merged)
	}

	removed := merged.WithoutGoal("Iron")
	if len(removed) != 1 || removed["Protein"] != "Low" {
		t.Errorf("removed = %v, want only Protein:Low", removed)
	}

	// Originals untouched.
	if len(p) != 1 {
		t.Errorf("source profile mutated: %v", p)
	}
}

func TestProfile_RoundTrip(t *testing.T) {
	p := Profile{"Iron": "high", "Protein": "low", "Omega-3": "Moderate"}

	back, err := ParseProfile(p.Serialize())
	if err != nil {
		t.Fatalf("round trip parse failed: %v", err)
	}
	if len(back) != len(p) {
		t.Fatalf("round trip lost keys: %v", back)
	}
	for k, v := range p {
		if back[k] != v {
			t.Errorf("key %s = %q after round trip, want %q", k, back[k], v)
		}
	}
}

func TestParseProfile_Invalid(t *testing.T) {
	if _, err := ParseProfile("not json"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	if p["Iron"] != "high" || p["Protein"] != "low" {
		t.Errorf("DefaultProfile = %v", p)
	}
}

func TestProfile_WithGoalTrimsName(t *testing.T) {
	p := Profile{}
	out := p.WithGoal("  Fiber ", "Good")
	if out["Fiber"] != "Good" {
		t.Errorf("WithGoal did not trim: %v", out)
	}
	if same := p.WithGoal("   ", "Good"); len(same) != 0 {
		t.Errorf("blank nutrient should be ignored: %v", same)
	}
}
