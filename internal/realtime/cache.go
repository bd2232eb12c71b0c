// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package realtime

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jeranaias/nutrismart-tui/internal/model"
	"github.com/jeranaias/nutrismart-tui/internal/util"
)

// =============================================================================
// SNAPSHOT CACHE
// =============================================================================

// cachedState is the on-disk mirror of the last applied snapshots, one file
// per user. Loading it at sign-in means a restart shows the last known data
// instead of an empty screen while the subscriptions come up. Slightly stale
// beats empty; the live snapshots overwrite it as soon as they arrive.
type cachedState struct {
	Messages  []model.ChatMessage `json:"messages"`
	Inventory model.Inventory     `json:"inventory"`
	Profile   model.Profile       `json:"profile"`
}

func (c *Collections) cachePath(uid string) string {
	return filepath.Join(c.stateDir, uid+".json")
}

// loadCache reads the cached state for a user. Any failure just means a cold
// start.
func (c *Collections) loadCache(uid string) (cachedState, bool) {
	if c.stateDir == "" {
		return cachedState{}, false
	}
	data, err := os.ReadFile(c.cachePath(uid))
	if err != nil {
		return cachedState{}, false
	}
	var state cachedState
	if err := json.Unmarshal(data, &state); err != nil {
		c.logger.Printf("realtime: discarding corrupt snapshot cache for %s: %v", uid, err)
		return cachedState{}, false
	}
	return state, true
}

// saveCacheLocked persists the current state. Caller holds c.mu.
// Cache writes are best effort; a failure is logged and the session carries
// on live-only.
func (c *Collections) saveCacheLocked() {
	if c.stateDir == "" || c.uid == "" {
		return
	}
	data, err := json.Marshal(cachedState{
		Messages:  c.messages,
		Inventory: c.inventory,
		Profile:   c.profile,
	})
	if err != nil {
		return
	}
	if err := os.MkdirAll(c.stateDir, 0o700); err != nil {
		c.logger.Printf("realtime: failed to create state dir: %v", err)
		return
	}
	if err := util.AtomicWriteFile(c.cachePath(c.uid), data, 0o600); err != nil {
		c.logger.Printf("realtime: failed to write snapshot cache: %v", err)
	}
}

// discardCache removes a user's cached state after sign-out.
func (c *Collections) discardCache(uid string) {
	if c.stateDir == "" {
		return
	}
	if err := os.Remove(c.cachePath(uid)); err != nil && !os.IsNotExist(err) {
		c.logger.Printf("realtime: failed to discard snapshot cache: %v", err)
	}
}
