// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the nutrismart client.
package model

import (
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/nutrismart-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "NutriSmart"
	default:
		return string(r)
	}
}

// =============================================================================
// CHAT MESSAGE TYPE
// =============================================================================

// ChatMessage represents a single message in the conversation.
//
// Timestamp is epoch milliseconds and doubles as the message's identity key:
// it is the document id in the remote store, the sort key for rendering, and
// the rollback token for optimistic sends. Messages are never mutated after
// creation, only appended or removed.
type ChatMessage struct {
	Role      Role   `json:"role"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`

	// RequiresAuth is set by the assistant when the reply could not be
	// personalized because the user is not signed in.
	RequiresAuth bool `json:"requires_auth,omitempty"`
}

// NewUserMessage creates a user message stamped with the current time.
func NewUserMessage(text string) ChatMessage {
	return ChatMessage{
		Role:      RoleUser,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewAssistantMessage creates an assistant message ordered directly after the
// user message it answers. The +1 guarantees the reply sorts after the
// request even when both land within the same millisecond.
func NewAssistantMessage(text string, afterTimestamp int64, requiresAuth bool) ChatMessage {
	return ChatMessage{
		Role:         RoleAssistant,
		Text:         text,
		Timestamp:    afterTimestamp + 1,
		RequiresAuth: requiresAuth,
	}
}

// Time returns the message timestamp as a time.Time.
func (m ChatMessage) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// =============================================================================
// MESSAGE LIST OPERATIONS
// =============================================================================

// SortMessages orders messages ascending by timestamp in place.
// The sort is stable so equal timestamps keep their arrival order.
func SortMessages(messages []ChatMessage) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})
}

// HistoryWindow is the number of trailing messages included as context in
// chat API requests.
const HistoryWindow = 10

// HistorySummary renders the last HistoryWindow messages as "role: text"
// lines, oldest first, for use as conversation context in chat requests.
func HistorySummary(messages []ChatMessage) string {
	start := 0
	if len(messages) > HistoryWindow {
		start = len(messages) - HistoryWindow
	}

	var sb strings.Builder
	for i, m := range messages[start:] {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(m.Role))
		sb.WriteString(": ")
		sb.WriteString(util.CollapseNewlines(m.Text))
	}
	return sb.String()
}
