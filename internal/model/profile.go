// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the nutrismart client.
package model

import (
	"encoding/json"
	"sort"
	"strings"
)

// =============================================================================
// NUTRIENT PROFILE TYPE
// =============================================================================

// Profile maps nutrient names to goal levels ("Iron" -> "high").
//
// The whole profile is one document in the remote store. Updates are computed
// client-side as a full merged object and sent as a document replace, never a
// per-key patch.
type Profile map[string]string

// DefaultProfile returns the profile used when no session or no remote
// document exists.
func DefaultProfile() Profile {
	return Profile{"Iron": "high", "Protein": "low"}
}

// Clone returns an independent copy of the profile.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// WithGoal returns a copy of the profile with the nutrient goal set.
// Nutrient names are trimmed; an empty name returns the profile unchanged.
func (p Profile) WithGoal(nutrient, level string) Profile {
	nutrient = strings.TrimSpace(nutrient)
	if nutrient == "" {
		return p
	}
	out := p.Clone()
	out[nutrient] = level
	return out
}

// WithoutGoal returns a copy of the profile with the nutrient removed.
func (p Profile) WithoutGoal(nutrient string) Profile {
	out := p.Clone()
	delete(out, nutrient)
	return out
}

// Nutrients returns the nutrient names in sorted order for stable display.
func (p Profile) Nutrients() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// ParseProfile decodes the serialized text form of a profile. Any key not
// explicitly removed survives a parse -> merge -> serialize round trip.
func ParseProfile(text string) (Profile, error) {
	var p Profile
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, err
	}
	if p == nil {
		p = Profile{}
	}
	return p, nil
}

// Serialize renders the profile as indented JSON, the editable text form
// shown in the dashboard.
func (p Profile) Serialize() string {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// =============================================================================
// FORM VOCABULARIES
// =============================================================================

// NutrientOptions are the nutrient choices offered by the dashboard form.
var NutrientOptions = []string{
	"Protein", "Iron", "Vitamin C", "Calcium", "Fiber", "B12", "Folate", "Omega-3", "Zinc",
}

// LevelOptions are the goal level choices offered by the dashboard form.
var LevelOptions = []string{"Very Low", "Low", "Moderate", "Good", "High", "Avoid"}
