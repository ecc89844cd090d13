// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

// Package sync implements the addon-collection reconciliation engine.
//
// Given a user's current live collection on the external service, the
// operator-defined desired set for the user's group, the user's
// exclusion list, and the protected set, the engine computes the new
// collection to push back and, on a separate cheaper path, a
// display-facing "is this user in sync" status.
//
// # Pipeline
//
// A sync request flows through:
//
//	protection resolution + desired-set building
//	    -> position reconciliation (locked slots)
//	    -> no-op detection (short-circuits redundant writes)
//	    -> apply (external set-collection + local snapshot)
//
// # Guarantees
//
//   - Protected entries never move or disappear, regardless of how the
//     desired set changes.
//   - The relative order of non-protected entries always mirrors the
//     group's stored order.
//   - Excluded addons are never re-added by group policy.
//   - Reconciling an already-reconciled collection is a no-op.
//
// # Concurrency
//
// Two concurrent syncs for the same user would race on the external
// collection (last writer silently wins), so the Manager serializes
// syncs per user with a keyed mutex. Different users are independent
// and group syncs fan out over members with a bounded limit.
package sync
