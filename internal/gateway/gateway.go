// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway funnels every user-initiated mutation — chat sends,
// profile edits, inventory changes, bill uploads — through one place that
// owns optimistic updates, persistence and duplicate suppression.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/jeranaias/nutrismart-tui/internal/api"
	"github.com/jeranaias/nutrismart-tui/internal/auth"
	"github.com/jeranaias/nutrismart-tui/internal/model"
	"github.com/jeranaias/nutrismart-tui/internal/realtime"
	"github.com/jeranaias/nutrismart-tui/internal/store"
)

// Gateway errors.
var (
	// ErrBusy is returned when an operation of the same kind is already in
	// flight. Callers treat it as a no-op, not a failure.
	ErrBusy = errors.New("operation already in progress")

	// ErrItemFields is returned when an inventory item is missing its name
	// or quantity.
	ErrItemFields = errors.New("item name and quantity are required")
)

// Kind identifies an operation family for duplicate suppression. Operations
// of different kinds run concurrently; two of the same kind do not.
type Kind string

const (
	KindChat      Kind = "chat"
	KindProfile   Kind = "profile"
	KindInventory Kind = "inventory"
	KindBill      Kind = "bill"
)

// Backend is the slice of the API client the gateway uses.
type Backend interface {
	Chat(ctx context.Context, message, history string) (api.ChatReply, error)
	SyncProfile(ctx context.Context, profile model.Profile) error
	SubmitBill(ctx context.Context, receipt json.RawMessage) error
}

// SessionSource exposes the active session. *auth.Manager satisfies it.
type SessionSource interface {
	Current() *auth.Session
}

// =============================================================================
// GATEWAY
// =============================================================================

// Gateway coordinates mutations across the backend and the document store.
type Gateway struct {
	backend     Backend
	store       store.Client
	sessions    SessionSource
	collections *realtime.Collections
	appID       string
	logger      *log.Logger

	mu       sync.Mutex
	inFlight map[Kind]bool
}

// New creates a gateway. logger may be nil.
func New(backend Backend, st store.Client, sessions SessionSource, collections *realtime.Collections, appID string, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Gateway{
		backend:     backend,
		store:       st,
		sessions:    sessions,
		collections: collections,
		appID:       appID,
		logger:      logger,
		inFlight:    make(map[Kind]bool),
	}
}

// Busy reports whether an operation of the given kind is in flight. Views
// use it to show spinners and disable inputs.
func (g *Gateway) Busy(kind Kind) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight[kind]
}

// begin claims the in-flight slot for a kind.
func (g *Gateway) begin(kind Kind) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight[kind] {
		return false
	}
	g.inFlight[kind] = true
	return true
}

// end releases the slot. Always runs, success or failure.
func (g *Gateway) end(kind Kind) {
	g.mu.Lock()
	delete(g.inFlight, kind)
	g.mu.Unlock()
}

func (g *Gateway) userPath(uid string) string {
	return fmt.Sprintf("artifacts/%s/users/%s", g.appID, uid)
}

// =============================================================================
// CHAT
// =============================================================================

// SendMessage runs one chat round trip: the user message appears immediately,
// the backend is asked for a reply, and on success both messages are
// persisted. On failure the optimistic message is rolled back by its
// timestamp and nothing is persisted.
//
// Sending works without a session: the backend answers anonymous chats (and
// flags them requires_auth); only the persistence step needs a user to key
// the documents under.
//
// An empty message and a send while another is in flight are both no-ops.
func (g *Gateway) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !g.begin(KindChat) {
		return ErrBusy
	}
	defer g.end(KindChat)

	// Context is the conversation as it stood before this message.
	history := model.HistorySummary(g.collections.Messages())

	userMsg := model.NewUserMessage(text)
	g.collections.StageMessage(userMsg)

	reply, err := g.backend.Chat(ctx, text, history)
	if err != nil {
		g.collections.UnstageMessage(userMsg.Timestamp)
		return fmt.Errorf("send failed: %w", err)
	}

	assistantMsg := model.NewAssistantMessage(reply.Response, userMsg.Timestamp, reply.RequiresAuth)
	g.collections.StageMessage(assistantMsg)

	// Persistence is best effort: the reply is already on screen, and the
	// subscription echo supersedes the staged copies when the writes land.
	// Without a session the exchange stays local.
	if sess := g.sessions.Current(); sess != nil {
		g.persistMessage(ctx, sess.UserID, userMsg)
		g.persistMessage(ctx, sess.UserID, assistantMsg)
	}
	return nil
}

func (g *Gateway) persistMessage(ctx context.Context, uid string, m model.ChatMessage) {
	fields := map[string]any{
		"role": string(m.Role),
		"text": m.Text,
	}
	if m.RequiresAuth {
		fields["requires_auth"] = true
	}
	path := g.userPath(uid) + "/messages/" + strconv.FormatInt(m.Timestamp, 10)
	if err := g.store.Write(ctx, path, fields, false); err != nil {
		g.logger.Printf("gateway: failed to persist %s message: %v", m.Role, err)
	}
}

// =============================================================================
// PROFILE
// =============================================================================

// UpdateProfile replaces the stored nutrient profile with the given one. The
// caller computes the full merged document; removed nutrients are absent from
// it rather than nulled out.
func (g *Gateway) UpdateProfile(ctx context.Context, profile model.Profile) error {
	sess := g.sessions.Current()
	if sess == nil {
		return auth.ErrNoSession
	}
	if !g.begin(KindProfile) {
		return ErrBusy
	}
	defer g.end(KindProfile)

	fields := make(map[string]any, len(profile))
	for nutrient, level := range profile {
		fields[nutrient] = level
	}
	path := g.userPath(sess.UserID) + "/profile/nutritional_goals"
	if err := g.store.Write(ctx, path, fields, false); err != nil {
		return fmt.Errorf("profile update failed: %w", err)
	}

	// The backend keeps its own personalization copy; a rejection there is
	// a failed update even though the document write already landed.
	if err := g.backend.SyncProfile(ctx, profile); err != nil {
		return fmt.Errorf("profile sync failed: %w", err)
	}
	return nil
}

// =============================================================================
// INVENTORY
// =============================================================================

// AddInventoryItem creates or updates a pantry item. The merge write revives
// tombstoned items under the same key.
func (g *Gateway) AddInventoryItem(ctx context.Context, name, quantity string) error {
	name = strings.TrimSpace(name)
	quantity = strings.TrimSpace(quantity)
	if name == "" || quantity == "" {
		return ErrItemFields
	}
	sess := g.sessions.Current()
	if sess == nil {
		return auth.ErrNoSession
	}
	if !g.begin(KindInventory) {
		return ErrBusy
	}
	defer g.end(KindInventory)

	path := g.userPath(sess.UserID) + "/inventory/" + model.ItemKey(name)
	fields := map[string]any{
		"name":         name,
		"quantity":     quantity,
		"deleted":      false,
		"last_updated": store.ServerTimestamp(),
	}
	if err := g.store.Write(ctx, path, fields, true); err != nil {
		return fmt.Errorf("inventory update failed: %w", err)
	}
	return nil
}

// RemoveInventoryItem tombstones a pantry item instead of deleting its
// record, so concurrent writers cannot resurrect it by merge. A write failure
// is logged and otherwise ignored; the item reappears on the next snapshot.
func (g *Gateway) RemoveInventoryItem(ctx context.Context, name string) error {
	sess := g.sessions.Current()
	if sess == nil {
		return auth.ErrNoSession
	}
	if !g.begin(KindInventory) {
		return ErrBusy
	}
	defer g.end(KindInventory)

	path := g.userPath(sess.UserID) + "/inventory/" + model.ItemKey(name)
	fields := map[string]any{
		"deleted":      true,
		"last_updated": store.ServerTimestamp(),
	}
	if err := g.store.Write(ctx, path, fields, true); err != nil {
		g.logger.Printf("gateway: failed to remove %q: %v", name, err)
	}
	return nil
}

// =============================================================================
// BILLS
// =============================================================================

// SubmitBill uploads a receipt for server-side item extraction.
func (g *Gateway) SubmitBill(ctx context.Context, receipt json.RawMessage) error {
	sess := g.sessions.Current()
	if sess == nil {
		return auth.ErrNoSession
	}
	if !g.begin(KindBill) {
		return ErrBusy
	}
	defer g.end(KindBill)

	if err := g.backend.SubmitBill(ctx, receipt); err != nil {
		return fmt.Errorf("bill upload failed: %w", err)
	}
	return nil
}
