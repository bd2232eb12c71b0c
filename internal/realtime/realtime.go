// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package realtime mirrors the signed-in user's remote collections — chat
// messages, pantry inventory and the nutrient profile — into local state the
// views render from.
//
// All three subscriptions are swapped as a set when the session changes.
// Every applied snapshot is fenced by a generation counter so a subscription
// belonging to a previous session can never write into the current one, no
// matter how late its frames arrive.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"

	"github.com/jeranaias/nutrismart-tui/internal/auth"
	"github.com/jeranaias/nutrismart-tui/internal/model"
	"github.com/jeranaias/nutrismart-tui/internal/store"
)

// =============================================================================
// EVENTS
// =============================================================================

// Event identifies which mirrored collection changed.
type Event int

const (
	EventMessages Event = iota
	EventInventory
	EventProfile
	// EventStatus signals a change in subscription health rather than data.
	EventStatus
)

// String returns the event name for logs.
func (e Event) String() string {
	switch e {
	case EventMessages:
		return "messages"
	case EventInventory:
		return "inventory"
	case EventProfile:
		return "profile"
	case EventStatus:
		return "status"
	default:
		return "unknown"
	}
}

// eventBuffer sizes the notification channel. Consumers re-read full state on
// every event, so dropping a notification while others are queued is harmless.
const eventBuffer = 64

// Status reports per-collection subscription health. A nil error means the
// subscription is live (or no session is active).
type Status struct {
	Messages  error
	Inventory error
	Profile   error
}

// Err returns the first subscription error, if any.
func (s Status) Err() error {
	switch {
	case s.Messages != nil:
		return s.Messages
	case s.Inventory != nil:
		return s.Inventory
	case s.Profile != nil:
		return s.Profile
	default:
		return nil
	}
}

// =============================================================================
// COLLECTIONS
// =============================================================================

// Collections holds the mirrored state for the active session.
type Collections struct {
	store    store.Client
	appID    string
	stateDir string // snapshot cache root; empty disables caching
	logger   *log.Logger

	events chan Event

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	uid        string
	messages   []model.ChatMessage
	pending    map[int64]model.ChatMessage
	inventory  model.Inventory
	profile    model.Profile
	status     Status
}

// NewCollections creates an empty mirror. No subscriptions exist until the
// first Swap. logger may be nil.
func NewCollections(st store.Client, appID, stateDir string, logger *log.Logger) *Collections {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Collections{
		store:    st,
		appID:    appID,
		stateDir: stateDir,
		logger:   logger,
		events:   make(chan Event, eventBuffer),
		pending:  make(map[int64]model.ChatMessage),
		profile:  model.DefaultProfile(),
	}
}

// Events returns the notification channel. Receivers should treat any event
// as "re-read state"; notifications are dropped rather than blocked on when
// the channel is full.
func (c *Collections) Events() <-chan Event {
	return c.events
}

// Close tears down the active subscriptions.
func (c *Collections) Close() {
	c.Swap(nil)
}

// =============================================================================
// SESSION SWAP
// =============================================================================

// Swap atomically replaces the subscription set for a new session. Passing
// nil tears everything down, resets local state to defaults and discards the
// previous user's snapshot cache.
//
// Swap never blocks on the network: subscriptions are opened from a fresh
// goroutine and state arrives via events.
func (c *Collections) Swap(sess *auth.Session) {
	c.mu.Lock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	gen := c.generation
	prevUID := c.uid

	c.messages = nil
	c.pending = make(map[int64]model.ChatMessage)
	c.inventory = nil
	c.profile = model.DefaultProfile()
	c.status = Status{}

	if sess == nil {
		c.uid = ""
		c.mu.Unlock()
		if prevUID != "" {
			c.discardCache(prevUID)
		}
		c.emitAll()
		return
	}

	uid := sess.UserID
	c.uid = uid
	if cached, ok := c.loadCache(uid); ok {
		c.messages = cached.Messages
		c.inventory = cached.Inventory
		if cached.Profile != nil {
			c.profile = cached.Profile
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	c.emitAll()
	go c.subscribe(ctx, gen, uid)
}

func (c *Collections) emitAll() {
	c.emit(EventMessages)
	c.emit(EventInventory)
	c.emit(EventProfile)
	c.emit(EventStatus)
}

func (c *Collections) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
	}
}

// =============================================================================
// SUBSCRIPTION PUMPS
// =============================================================================

func (c *Collections) userPath(uid string) string {
	return fmt.Sprintf("artifacts/%s/users/%s", c.appID, uid)
}

func (c *Collections) subscribe(ctx context.Context, gen uint64, uid string) {
	base := c.userPath(uid)

	c.pump(ctx, gen, EventMessages, base+"/messages", false)
	c.pump(ctx, gen, EventInventory, base+"/inventory", false)
	c.pump(ctx, gen, EventProfile, base+"/profile/nutritional_goals", true)
}

// pump starts one subscription goroutine. A terminal error freezes the
// collection at its last applied value; the stale data stays visible and the
// failure is surfaced through Status.
func (c *Collections) pump(ctx context.Context, gen uint64, ev Event, path string, document bool) {
	var (
		updates <-chan store.Update
		err     error
	)
	if document {
		updates, err = c.store.ListenDocument(ctx, path)
	} else {
		updates, err = c.store.ListenCollection(ctx, path)
	}
	if err != nil {
		c.freeze(gen, ev, err)
		return
	}

	go func() {
		for update := range updates {
			if update.Err != nil {
				c.freeze(gen, ev, update.Err)
				return
			}
			c.apply(gen, ev, update.Snap)
		}
	}()
}

// apply installs a snapshot if it still belongs to the current generation.
func (c *Collections) apply(gen uint64, ev Event, snap store.Snapshot) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}

	switch ev {
	case EventMessages:
		c.messages = decodeMessages(snap.Docs, c.logger)
		// Server confirmation supersedes the optimistic copy.
		for _, m := range c.messages {
			delete(c.pending, m.Timestamp)
		}
	case EventInventory:
		c.inventory = decodeInventory(snap.Docs, c.logger)
	case EventProfile:
		c.profile = decodeProfile(snap.Doc, c.logger)
	}
	c.saveCacheLocked()
	c.mu.Unlock()

	c.emit(ev)
}

func (c *Collections) freeze(gen uint64, ev Event, err error) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	switch ev {
	case EventMessages:
		c.status.Messages = err
	case EventInventory:
		c.status.Inventory = err
	case EventProfile:
		c.status.Profile = err
	}
	c.mu.Unlock()

	c.logger.Printf("realtime: %s subscription failed, showing last known data: %v", ev, err)
	c.emit(EventStatus)
}

// =============================================================================
// SNAPSHOT DECODING
// =============================================================================

type messageFields struct {
	Role         model.Role `json:"role"`
	Text         string     `json:"text"`
	RequiresAuth bool       `json:"requires_auth"`
}

func decodeMessages(docs map[string]json.RawMessage, logger *log.Logger) []model.ChatMessage {
	messages := make([]model.ChatMessage, 0, len(docs))
	for id, raw := range docs {
		ts, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			logger.Printf("realtime: skipping message with bad id %q: %v", id, err)
			continue
		}
		var fields messageFields
		if err := json.Unmarshal(raw, &fields); err != nil {
			logger.Printf("realtime: skipping undecodable message %s: %v", id, err)
			continue
		}
		messages = append(messages, model.ChatMessage{
			Role:         fields.Role,
			Text:         fields.Text,
			Timestamp:    ts,
			RequiresAuth: fields.RequiresAuth,
		})
	}
	model.SortMessages(messages)
	return messages
}

func decodeInventory(docs map[string]json.RawMessage, logger *log.Logger) model.Inventory {
	inv := make(model.Inventory, len(docs))
	for key, raw := range docs {
		var item model.InventoryItem
		if err := json.Unmarshal(raw, &item); err != nil {
			logger.Printf("realtime: skipping undecodable inventory item %q: %v", key, err)
			continue
		}
		item.Name = key
		inv[key] = item
	}
	return inv
}

func decodeProfile(doc json.RawMessage, logger *log.Logger) model.Profile {
	if doc == nil {
		return model.DefaultProfile()
	}
	var p model.Profile
	if err := json.Unmarshal(doc, &p); err != nil {
		logger.Printf("realtime: undecodable profile document, using defaults: %v", err)
		return model.DefaultProfile()
	}
	if len(p) == 0 {
		return model.DefaultProfile()
	}
	return p
}

// =============================================================================
// READ ACCESSORS
// =============================================================================

// Messages returns the conversation for rendering: confirmed messages merged
// with optimistic ones not yet echoed back, sorted by timestamp.
func (c *Collections) Messages() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.ChatMessage, 0, len(c.messages)+len(c.pending))
	out = append(out, c.messages...)
	for _, m := range c.pending {
		out = append(out, m)
	}
	model.SortMessages(out)
	return out
}

// Inventory returns the visible pantry items, tombstones filtered, sorted by
// name.
func (c *Collections) Inventory() []model.InventoryItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.MaterializeInventory(c.inventory)
}

// HasItem reports whether a non-removed item exists under the given name.
func (c *Collections) HasItem(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.inventory[model.ItemKey(name)]
	return ok && !item.IsRemoved()
}

// Profile returns a copy of the current nutrient profile.
func (c *Collections) Profile() model.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile.Clone()
}

// Status returns the current subscription health.
func (c *Collections) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// =============================================================================
// OPTIMISTIC MESSAGE OVERLAY
// =============================================================================

// StageMessage makes a message visible immediately, before the store echoes
// it back. The message's timestamp is the token UnstageMessage takes to roll
// it back.
func (c *Collections) StageMessage(m model.ChatMessage) {
	c.mu.Lock()
	c.pending[m.Timestamp] = m
	c.mu.Unlock()
	c.emit(EventMessages)
}

// UnstageMessage rolls back a staged message after a failed send.
func (c *Collections) UnstageMessage(timestamp int64) {
	c.mu.Lock()
	delete(c.pending, timestamp)
	c.mu.Unlock()
	c.emit(EventMessages)
}
