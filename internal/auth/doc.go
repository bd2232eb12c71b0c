// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides the identity-provider client and session management
// for the nutrismart client.
//
// A Session is the current identity, anonymous or email-backed. The Manager
// owns the single live session and fans out changes to watchers; consumers
// never observe two different sessions without an intervening nil, so
// sign-out is always visible before a back-to-back sign-in.
//
// The Client speaks the identity provider's REST API: anonymous session
// creation, email/password sign-in and sign-up, display-name update, token
// refresh, and best-effort sign-out revocation.
package auth
