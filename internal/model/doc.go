// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the nutrismart client:
// chat messages, pantry inventory items and the nutrient goal profile.
//
// The types here mirror the documents kept in the remote store. They carry the
// ordering and filtering rules the views rely on: messages sort ascending by
// timestamp, inventory lists exclude tombstoned items, and the profile
// round-trips through parse -> merge -> serialize without losing keys.
package model
