// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package models

import "time"

// User is a managed end-user account. The credential blob is the user's
// external-service auth key, encrypted at rest with AES-256-GCM; it is
// opaque to everything except the sync applier.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	GroupID  string `json:"groupId,omitempty"`

	// Active is false when the user has no working credential. Inactive
	// users are skipped by scheduled syncs until they reconnect.
	Active bool `json:"active"`

	// CredentialBlob is the base64 AES-GCM ciphertext of the external
	// service auth key. Empty means the user never connected.
	CredentialBlob string `json:"credentialBlob,omitempty"`

	// ProtectedURLs is the user's custom protected list: manifest URLs
	// the engine must never move or remove, regardless of sync mode.
	ProtectedURLs []string `json:"protectedUrls,omitempty"`

	// ExcludedURLs is the user's opt-out list: manifest URLs group
	// policy must never push back onto this account.
	ExcludedURLs []string `json:"excludedUrls,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Group is an operator-defined set of users sharing one ordered desired
// addon list. The list order is the source of truth for collection order.
type Group struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Addons []AddonRef `json:"addons"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
