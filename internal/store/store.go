// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the realtime document-store client.
package store

import (
	"context"
	"encoding/json"
)

// =============================================================================
// SNAPSHOT TYPES
// =============================================================================

// Snapshot is one full-state update for a watched path. The store pushes
// complete snapshots, not deltas; consumers re-derive their views on every
// update.
type Snapshot struct {
	// Docs maps document id to raw fields, for collection watches.
	Docs map[string]json.RawMessage

	// Doc holds the watched document for document watches; nil when the
	// document does not exist.
	Doc json.RawMessage
}

// Update is what a subscription channel delivers: either a snapshot or a
// terminal error. After an Update with Err set, the channel is closed and
// the subscription is dead.
type Update struct {
	Snap Snapshot
	Err  error
}

// =============================================================================
// CLIENT INTERFACE
// =============================================================================

// Client is the document-store surface the rest of the client consumes.
// *Remote implements it; tests substitute fakes.
type Client interface {
	// ListenCollection opens a live subscription on a collection path.
	// The first snapshot arrives as soon as the server sends the initial
	// state. Cancel the context to close the subscription.
	ListenCollection(ctx context.Context, path string) (<-chan Update, error)

	// ListenDocument opens a live subscription on a single document path.
	ListenDocument(ctx context.Context, path string) (<-chan Update, error)

	// Write stores fields at the document path. With merge set, fields are
	// merged into the existing document; otherwise the document is
	// replaced.
	Write(ctx context.Context, path string, fields map[string]any, merge bool) error
}

// =============================================================================
// SERVER TIMESTAMP
// =============================================================================

// serverTimestampSentinel is the field value the server replaces with its
// own clock at commit time.
const serverTimestampSentinel = "__server_timestamp__"

// ServerTimestamp returns the sentinel value for server-assigned
// timestamps. Use it as a field value in Write.
func ServerTimestamp() any {
	return serverTimestampSentinel
}
