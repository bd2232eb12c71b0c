// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the realtime document-store client.
//
// The store is a path-addressed document database with live subscriptions.
// Writes go over HTTPS; subscriptions are full-snapshot pushes over a
// websocket listen channel that reconnects automatically.
//
// Document layout used by nutrismart:
//
//	artifacts/{app_id}/users/{uid}/messages/{timestamp}
//	artifacts/{app_id}/users/{uid}/inventory/{item_key}
//	artifacts/{app_id}/users/{uid}/profile/nutritional_goals
package store
