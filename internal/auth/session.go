// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides identity and session management for nutrismart.
package auth

import (
	"sync"
	"time"
)

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session represents one signed-in identity, anonymous or email-backed.
//
// Identity fields are fixed at sign-in. Token fields rotate as the ID token
// is refreshed and are guarded by mu; use Client.IDToken to read a fresh
// token rather than touching these directly.
type Session struct {
	UserID      string
	IsAnonymous bool
	Email       string
	DisplayName string

	mu           sync.Mutex
	idToken      string
	refreshToken string
	expiresAt    time.Time
}

// ShortID returns a truncated user id for display next to anonymous users.
func (s *Session) ShortID() string {
	if len(s.UserID) <= 8 {
		return s.UserID
	}
	return s.UserID[:8] + "..."
}

// Label returns the name shown in the header: display name, then email,
// then the shortened user id.
func (s *Session) Label() string {
	if !s.IsAnonymous {
		if s.DisplayName != "" {
			return s.DisplayName
		}
		if s.Email != "" {
			return s.Email
		}
	}
	return s.ShortID()
}

// token returns the current token fields.
func (s *Session) token() (idToken, refreshToken string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idToken, s.refreshToken, s.expiresAt
}

// setToken replaces the current token fields.
func (s *Session) setToken(idToken, refreshToken string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idToken = idToken
	if refreshToken != "" {
		s.refreshToken = refreshToken
	}
	s.expiresAt = expiresAt
}
