// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

// Package models defines the core data structures shared across the
// AddonSync application: addon manifests, collection entries, users,
// groups, and sync result types.
package models

import (
	"strings"

	"github.com/goccy/go-json"
)

// Manifest represents a Stremio addon manifest document.
//
// Resources and Catalogs are kept as raw JSON because real-world manifests
// mix plain strings ("catalog") and structured objects ({"name": "stream",
// "types": [...]}) in the same array. The engine only depends on ID, Name,
// Version, Description and Types; everything else is carried opaquely so a
// round-trip through AddonSync never mangles a manifest it does not
// understand.
type Manifest struct {
	ID            string            `json:"id"`
	Version       string            `json:"version,omitempty"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Logo          string            `json:"logo,omitempty"`
	Background    string            `json:"background,omitempty"`
	Types         []string          `json:"types"`
	Resources     []json.RawMessage `json:"resources"`
	Catalogs      []json.RawMessage `json:"catalogs"`
	IDPrefixes    []string          `json:"idPrefixes,omitempty"`
	BehaviorHints json.RawMessage   `json:"behaviorHints,omitempty"`
}

// AddonRef is a desired addon as known to the operator: the group-level
// record that says "users of this group should have this addon".
type AddonRef struct {
	// Identity is the stable addon identity (manifest id when known).
	Identity string `json:"identity"`

	// DisplayName is the operator-facing name.
	DisplayName string `json:"displayName"`

	// ManifestURL is the canonical transport URL; it uniquely identifies
	// an addon instance.
	ManifestURL string `json:"manifestUrl"`

	// Version is the last version observed on manifest reload.
	Version string `json:"version,omitempty"`

	// ManifestSnapshot is the most recently fetched manifest document,
	// used as fallback material when a live fetch degrades.
	ManifestSnapshot *Manifest `json:"manifestSnapshot,omitempty"`

	// Enabled gates the addon out of the desired set without deleting
	// the group assignment.
	Enabled bool `json:"enabled"`
}

// CollectionEntry is one entry of a user's live addon collection as
// reported by the external service. Entirely owned by the external
// service; AddonSync replaces collections wholesale and caches entries
// locally only for display and debugging.
type CollectionEntry struct {
	TransportURL  string   `json:"transportUrl"`
	TransportName string   `json:"transportName,omitempty"`
	Manifest      Manifest `json:"manifest"`
}

// NormalizeURL canonicalizes a manifest/transport URL for identity
// comparison: lowercased with surrounding whitespace removed.
func NormalizeURL(url string) string {
	return strings.ToLower(strings.TrimSpace(url))
}
