// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package sync

import (
	"github.com/strmforge/addonsync/internal/models"
)

// CompareCollections decides synced vs unsynced for the display status.
//
// desiredURLs is the ordered normalized URL list from DesiredURLs.
// Protected entries are ignored for BOTH the membership and the order
// check: a protected addon absent from the desired set (a user-custom
// protected addon, or a service default in safe mode) is never counted
// as extra, never expected, and never breaks the order comparison.
//
// The user is synced iff nothing desired is missing from current,
// nothing non-protected in current is undesired, and the non-protected
// URLs of current appear in exactly the desired order.
func CompareCollections(current []models.CollectionEntry, desiredURLs []string, prot ProtectionSet) models.SyncStatus {
	desired := make(map[string]bool, len(desiredURLs))
	expected := make([]string, 0, len(desiredURLs))
	for _, url := range desiredURLs {
		if prot.IsProtectedURL(url) {
			// Protected-but-desired is pinned in place by the
			// reconciler, not by desired order; skip it here too.
			continue
		}
		desired[url] = true
		expected = append(expected, url)
	}

	currentURLs := make(map[string]bool, len(current))
	actual := make([]string, 0, len(current))
	for i := range current {
		if prot.IsProtected(current[i]) {
			continue
		}
		url := models.NormalizeURL(current[i].TransportURL)
		currentURLs[url] = true
		actual = append(actual, url)
	}

	// missing = desired - current
	for url := range desired {
		if !currentURLs[url] {
			return models.StatusUnsynced
		}
	}

	// extra = current - desired (protected already excluded)
	for url := range currentURLs {
		if !desired[url] {
			return models.StatusUnsynced
		}
	}

	// order: non-protected current must match desired order exactly
	if len(actual) != len(expected) {
		return models.StatusUnsynced
	}
	for i := range expected {
		if actual[i] != expected[i] {
			return models.StatusUnsynced
		}
	}

	return models.StatusSynced
}
