// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package models

// SyncStatus is the display-facing sync state of a user account.
type SyncStatus string

const (
	// StatusChecking is the zero value: status not yet resolved.
	StatusChecking SyncStatus = "checking"

	// StatusSyncing means an apply is currently in flight for the user.
	StatusSyncing SyncStatus = "syncing"

	// StatusConnect means the user has no usable credential (missing,
	// undecryptable, or rejected by the external service) and needs to
	// reconnect their account.
	StatusConnect SyncStatus = "connect"

	// StatusStale means there is nothing to compare against: the user
	// has no group, or the group has no addons.
	StatusStale SyncStatus = "stale"

	// StatusError means the live collection fetch failed for a
	// non-auth reason.
	StatusError SyncStatus = "error"

	// StatusSynced means the live collection matches group policy in
	// membership and order.
	StatusSynced SyncStatus = "synced"

	// StatusUnsynced means the live collection diverges from group
	// policy (missing, extra, or misordered entries).
	StatusUnsynced SyncStatus = "unsynced"
)

// SyncMode selects how a sync run resolves manifests.
type SyncMode string

const (
	// ModeNormal reuses stored manifest snapshots where available.
	ModeNormal SyncMode = "normal"

	// ModeAdvanced forces a manifest-refresh pass over every desired
	// addon before reconciling. It does not change the reconciliation
	// algorithm itself.
	ModeAdvanced SyncMode = "advanced"
)

// SyncResult is the outcome of a single user sync.
type SyncResult struct {
	UserID        string `json:"userId"`
	Success       bool   `json:"success"`
	Total         int    `json:"total"`
	AlreadySynced bool   `json:"alreadySynced,omitempty"`
	Error         string `json:"error,omitempty"`
}

// GroupSyncResult aggregates per-user outcomes of a group sync. One
// user's failure never aborts the others.
type GroupSyncResult struct {
	GroupID     string          `json:"groupId"`
	SyncedCount int             `json:"syncedCount"`
	TotalUsers  int             `json:"totalUsers"`
	Errors      []UserSyncError `json:"errors,omitempty"`
}

// UserSyncError records which user failed and why during a group sync.
type UserSyncError struct {
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
	Error    string `json:"error"`
}

// StatusResult is the read-only status report consumed by UI polling.
type StatusResult struct {
	UserID  string     `json:"userId"`
	Status  SyncStatus `json:"status"`
	Message string     `json:"message,omitempty"`

	// CachedCollection is the last locally persisted collection,
	// attached when the live fetch fails so the UI can keep rendering
	// the previous state alongside the error.
	CachedCollection []CollectionEntry `json:"cachedCollection,omitempty"`
}
