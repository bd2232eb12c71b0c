// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the realtime document-store client.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Configuration constants for the remote store client.
const (
	// DefaultWriteTimeout bounds a single document write.
	DefaultWriteTimeout = 30 * time.Second

	// handshakeTimeout bounds the websocket dial.
	handshakeTimeout = 10 * time.Second

	// reconnectBaseDelay is the base delay for reconnect backoff.
	reconnectBaseDelay = 500 * time.Millisecond

	// reconnectMaxDelay caps the reconnect backoff.
	reconnectMaxDelay = 10 * time.Second

	// maxReconnectAttempts is how many consecutive failed reconnects are
	// tolerated before the subscription is declared dead.
	maxReconnectAttempts = 5

	// maxResponseSize caps write response bodies.
	maxResponseSize = 1 * 1024 * 1024
)

// ErrSubscriptionClosed is delivered when a subscription could not be
// re-established and will receive no further snapshots.
var ErrSubscriptionClosed = errors.New("store subscription closed")

// StoreError represents a structured error from the store API.
type StoreError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store error (HTTP %d): %s", e.Status, e.Message)
}

// TokenSource supplies bearer tokens for store writes. A nil TokenSource
// sends unauthenticated writes.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type subscribeFrame struct {
	Action  string `json:"action"`
	WatchID string `json:"watch_id"`
	Path    string `json:"path"`
	Target  string `json:"target"` // "collection" or "document"
}

type snapshotFrame struct {
	WatchID string          `json:"watch_id"`
	Docs    []frameDoc      `json:"docs,omitempty"`
	Doc     json.RawMessage `json:"doc,omitempty"`
	Exists  bool            `json:"exists"`
}

type frameDoc struct {
	ID     string          `json:"id"`
	Fields json.RawMessage `json:"fields"`
}

type writeRequest struct {
	Fields map[string]any `json:"fields"`
	Merge  bool           `json:"merge"`
}

type storeErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// REMOTE CLIENT
// =============================================================================

// Remote is the production store client.
type Remote struct {
	endpoint       string // https endpoint for writes
	listenEndpoint string // ws endpoint for subscriptions
	tokens         TokenSource
	httpClient     *http.Client
	dialer         *websocket.Dialer
}

// NewRemote creates a store client. tokens may be nil for unauthenticated
// access.
func NewRemote(endpoint, listenEndpoint string, tokens TokenSource) *Remote {
	return &Remote{
		endpoint:       strings.TrimRight(endpoint, "/"),
		listenEndpoint: strings.TrimRight(listenEndpoint, "/"),
		tokens:         tokens,
		httpClient: &http.Client{
			Timeout: DefaultWriteTimeout,
		},
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

// =============================================================================
// WRITES
// =============================================================================

// Write stores fields at the document path, merging when requested.
func (r *Remote) Write(ctx context.Context, path string, fields map[string]any, merge bool) error {
	body, err := json.Marshal(writeRequest{Fields: fields, Merge: merge})
	if err != nil {
		return fmt.Errorf("failed to encode write: %w", err)
	}

	url := r.endpoint + "/documents/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if r.tokens != nil {
		token, err := r.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("failed to get store token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("store write failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		var errResp storeErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return &StoreError{Status: resp.StatusCode, Message: errResp.Error.Message}
		}
		return &StoreError{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}
	return nil
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// ListenCollection opens a live subscription on a collection path.
func (r *Remote) ListenCollection(ctx context.Context, path string) (<-chan Update, error) {
	return r.listen(ctx, path, "collection")
}

// ListenDocument opens a live subscription on a single document path.
func (r *Remote) ListenDocument(ctx context.Context, path string) (<-chan Update, error) {
	return r.listen(ctx, path, "document")
}

func (r *Remote) listen(ctx context.Context, path, target string) (<-chan Update, error) {
	if r.listenEndpoint == "" {
		return nil, errors.New("store listen endpoint not configured")
	}

	updates := make(chan Update, 1)
	go r.listenLoop(ctx, path, target, updates)
	return updates, nil
}

// listenLoop dials the listen channel and pushes snapshots until the
// context is cancelled. A dropped connection is redialed with capped
// backoff; after maxReconnectAttempts consecutive failures the loop
// delivers a terminal error and exits.
func (r *Remote) listenLoop(ctx context.Context, path, target string, updates chan<- Update) {
	defer close(updates)

	failures := 0
	for {
		if ctx.Err() != nil {
			return
		}

		err := r.listenOnce(ctx, path, target, updates, &failures)
		if ctx.Err() != nil {
			return
		}

		failures++
		if failures > maxReconnectAttempts {
			select {
			case updates <- Update{Err: fmt.Errorf("%w: %v", ErrSubscriptionClosed, err)}:
			case <-ctx.Done():
			}
			return
		}

		delay := reconnectBaseDelay << (failures - 1)
		if delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

// listenOnce runs a single websocket session: dial, subscribe, then pump
// snapshots. Returns the error that ended the session.
func (r *Remote) listenOnce(ctx context.Context, path, target string, updates chan<- Update, failures *int) error {
	ws, _, err := r.dialer.DialContext(ctx, r.listenEndpoint+"/listen", nil)
	if err != nil {
		return fmt.Errorf("listen dial failed: %w", err)
	}
	defer ws.Close()

	// Unblock reads when the context is cancelled.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ws.Close()
		case <-stop:
		}
	}()

	watchID := uuid.NewString()
	if err := ws.WriteJSON(subscribeFrame{
		Action:  "subscribe",
		WatchID: watchID,
		Path:    strings.TrimLeft(path, "/"),
		Target:  target,
	}); err != nil {
		return fmt.Errorf("subscribe failed: %w", err)
	}

	for {
		var frame snapshotFrame
		if err := ws.ReadJSON(&frame); err != nil {
			return fmt.Errorf("listen read failed: %w", err)
		}
		if frame.WatchID != watchID {
			continue
		}

		// A delivered snapshot proves the channel is healthy again.
		*failures = 0

		select {
		case updates <- Update{Snap: snapshotFrom(frame, target)}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func snapshotFrom(frame snapshotFrame, target string) Snapshot {
	if target == "document" {
		var doc json.RawMessage
		if frame.Exists {
			doc = frame.Doc
		}
		return Snapshot{Doc: doc}
	}

	docs := make(map[string]json.RawMessage, len(frame.Docs))
	for _, d := range frame.Docs {
		docs[d.ID] = d.Fields
	}
	return Snapshot{Docs: docs}
}
