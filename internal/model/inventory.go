// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the nutrismart client.
package model

import (
	"sort"
	"strings"
	"time"
)

// =============================================================================
// INVENTORY ITEM TYPE
// =============================================================================

// InventoryItem represents one pantry entry.
//
// Name is the document key: trimmed and lowercased, unique per user.
// Quantity is a free-form magnitude plus unit ("2 kg", "3 pieces").
// Items are never physically deleted from the store; removal sets the
// Deleted tombstone. Older records written by previous clients used the
// quantity sentinel "0" instead, which is still honored on read.
type InventoryItem struct {
	Name        string    `json:"name"`
	Quantity    string    `json:"quantity"`
	LastUpdated time.Time `json:"last_updated"`
	Deleted     bool      `json:"deleted,omitempty"`
}

// legacyDeletedQuantity is the sentinel older clients wrote instead of the
// Deleted tombstone.
const legacyDeletedQuantity = "0"

// IsRemoved reports whether the item is logically deleted.
func (it InventoryItem) IsRemoved() bool {
	return it.Deleted || it.Quantity == legacyDeletedQuantity
}

// ItemKey normalizes an item name into its document key.
func ItemKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// =============================================================================
// INVENTORY MATERIALIZATION
// =============================================================================

// Inventory is the raw mapping mirrored from the store, keyed by item key.
// Tombstoned records are retained here; MaterializeInventory filters them.
type Inventory map[string]InventoryItem

// MaterializeInventory converts the raw mapping into the list the views
// render: tombstoned and legacy zero-quantity records excluded, sorted by
// name for stable display.
func MaterializeInventory(inv Inventory) []InventoryItem {
	items := make([]InventoryItem, 0, len(inv))
	for key, it := range inv {
		if it.IsRemoved() {
			continue
		}
		it.Name = key
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
	return items
}

// QuantityUnits are the unit choices offered by the dashboard quick-add form.
var QuantityUnits = []string{"units", "g", "kg", "ml", "L", "oz", "lbs", "cups", "pieces"}
