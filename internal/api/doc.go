// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

// Package api provides the HTTP trigger surface for addon-collection
// synchronization: per-user and per-group sync triggers, the status
// polling endpoint, health, and Prometheus metrics.
//
// The package is deliberately thin. Handlers validate input, call the
// sync manager, and translate its typed errors into response codes.
// All reconciliation logic lives in internal/sync.
package api
