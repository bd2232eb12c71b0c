// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides identity and session management for nutrismart.
package auth

import (
	"context"
	"sync"
)

// =============================================================================
// PROVIDER INTERFACE
// =============================================================================

// Provider is the identity-provider surface the Manager drives. *Client
// implements it; tests substitute fakes.
type Provider interface {
	SignInAnonymously(ctx context.Context) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password, displayName string) (*Session, error)
	SignOut(ctx context.Context, sess *Session) error
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager owns the single live session and fans out changes to watchers.
//
// The invariant watchers rely on: between two different non-nil sessions
// there is always a nil. A sign-in that replaces an existing session emits
// the sign-out first.
type Manager struct {
	provider Provider

	mu       sync.Mutex
	current  *Session
	watchers map[int]chan *Session
	nextID   int
}

// NewManager creates a session manager backed by the given provider.
func NewManager(provider Provider) *Manager {
	return &Manager{
		provider: provider,
		watchers: make(map[int]chan *Session),
	}
}

// Current returns the live session, or nil when signed out.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// =============================================================================
// WATCHING
// =============================================================================

// watchBuffer sizes watcher channels. Watchers are expected to drain
// promptly; the buffer only absorbs short bursts.
const watchBuffer = 16

// Watch returns a channel that receives the current session immediately and
// every subsequent change, plus a cancel function that releases the watcher.
func (m *Manager) Watch() (<-chan *Session, func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	ch := make(chan *Session, watchBuffer)
	m.watchers[id] = ch
	current := m.current
	m.mu.Unlock()

	ch <- current

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.watchers, id)
	}
	return ch, cancel
}

// set installs the next session and notifies watchers, inserting the nil
// between two different live sessions.
func (m *Manager) set(next *Session) {
	m.mu.Lock()
	prev := m.current
	m.current = next
	chans := make([]chan *Session, 0, len(m.watchers))
	for _, ch := range m.watchers {
		chans = append(chans, ch)
	}
	m.mu.Unlock()

	if prev == next {
		return
	}
	for _, ch := range chans {
		if prev != nil && next != nil {
			ch <- nil
		}
		ch <- next
	}
}

// =============================================================================
// AUTH OPERATIONS
// =============================================================================

// SignInAnonymously creates and installs an anonymous session.
func (m *Manager) SignInAnonymously(ctx context.Context) (*Session, error) {
	sess, err := m.provider.SignInAnonymously(ctx)
	if err != nil {
		return nil, err
	}
	m.set(sess)
	return sess, nil
}

// SignInWithPassword signs in with email/password and installs the session.
func (m *Manager) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	sess, err := m.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	m.set(sess)
	return sess, nil
}

// SignUp validates the password confirmation locally, then creates the
// account and installs the session. A mismatch never reaches the provider.
//
// The provider may return both a session and an error when the display-name
// second step failed; the session is installed regardless, matching the
// "account exists, not rolled back" contract.
func (m *Manager) SignUp(ctx context.Context, email, password, confirmPassword, displayName string) (*Session, error) {
	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}
	sess, err := m.provider.SignUp(ctx, email, password, displayName)
	if sess != nil {
		m.set(sess)
	}
	return sess, err
}

// SignOut clears the session. Remote revocation is best effort; local state
// is cleared no matter what.
func (m *Manager) SignOut(ctx context.Context) {
	m.mu.Lock()
	sess := m.current
	m.mu.Unlock()

	if sess != nil {
		// Revocation failure is not surfaced; the local sign-out proceeds.
		_ = m.provider.SignOut(ctx, sess)
	}
	m.set(nil)
}
