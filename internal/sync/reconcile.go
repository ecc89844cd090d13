// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package sync

import (
	"github.com/strmforge/addonsync/internal/models"
)

// Reconcile computes the new collection from the user's current live
// collection and the ordered desired set, honoring the protection set.
//
// Locked-positions algorithm:
//
//  1. Every index of current holding a protected entry becomes a locked
//     slot; all other indices are open slots.
//  2. Locked entries keep their exact original index in the result.
//  3. Open slots are filled left to right from the front of the desired
//     queue. Desired entries colliding with a locked URL are dropped up
//     front: the locked entry wins, and its position never shifts.
//  4. Desired entries left over after all open slots are filled are
//     appended at the end, in order.
//  5. Unfilled open slots (current had more room than desired had
//     entries) are removed.
//  6. The final collection is deduplicated by normalized transport URL,
//     keeping first occurrence.
//
// Reconcile is a pure function of its three inputs. Running it on its
// own output with the same desired/protection inputs yields an
// identical collection.
func Reconcile(current, desired []models.CollectionEntry, prot ProtectionSet) []models.CollectionEntry {
	slots := make([]*models.CollectionEntry, len(current))
	lockedURLs := make(map[string]bool)
	for i := range current {
		if prot.IsProtected(current[i]) {
			slots[i] = &current[i]
			lockedURLs[models.NormalizeURL(current[i].TransportURL)] = true
		}
	}

	// Desired entries whose URL is already locked in place would lose
	// the dedup collision anyway; dropping them before slot filling
	// keeps the later desired entries from shifting.
	queue := make([]models.CollectionEntry, 0, len(desired))
	for _, entry := range desired {
		if !lockedURLs[models.NormalizeURL(entry.TransportURL)] {
			queue = append(queue, entry)
		}
	}

	next := 0
	for i := range slots {
		if slots[i] == nil && next < len(queue) {
			slots[i] = &queue[next]
			next++
		}
	}

	result := make([]models.CollectionEntry, 0, len(current)+len(queue))
	seen := make(map[string]bool)
	emit := func(entry models.CollectionEntry) {
		key := models.NormalizeURL(entry.TransportURL)
		if seen[key] {
			return
		}
		seen[key] = true
		result = append(result, entry)
	}

	for _, slot := range slots {
		if slot != nil {
			emit(*slot)
		}
	}
	for ; next < len(queue); next++ {
		emit(queue[next])
	}

	return result
}

// IsNoOp reports whether applying reconciled would change nothing on
// the external service: the set of normalized (id, url) identity keys
// and the full ordered URL sequence must both be identical. Used purely
// as a write-avoidance optimization; callers still report "already
// synced" and "sync complete" distinctly.
func IsNoOp(current, reconciled []models.CollectionEntry) bool {
	if len(current) != len(reconciled) {
		return false
	}

	for i := range current {
		if models.NormalizeURL(current[i].TransportURL) != models.NormalizeURL(reconciled[i].TransportURL) {
			return false
		}
	}

	return sameIdentitySet(current, reconciled)
}

// sameIdentitySet compares the multisets of normalized (id, url)
// identity keys of two collections.
func sameIdentitySet(a, b []models.CollectionEntry) bool {
	ka := identityKeys(a)
	kb := identityKeys(b)
	if len(ka) != len(kb) {
		return false
	}
	for key, count := range ka {
		if kb[key] != count {
			return false
		}
	}
	return true
}

// identityKeys counts normalized (id, url) identity keys.
func identityKeys(entries []models.CollectionEntry) map[string]int {
	keys := make(map[string]int, len(entries))
	for _, entry := range entries {
		keys[entry.Manifest.ID+"\x00"+models.NormalizeURL(entry.TransportURL)]++
	}
	return keys
}
