// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

/*
applier.go - External Service Interaction Helpers

This file contains the manager's credential and collection I/O helpers:
decrypting stored credentials, fetching the live collection, pushing
the reconciled one, and persisting the post-sync snapshot. Every
failure is wrapped in a typed pipeline error so callers and metrics can
classify it without string matching.
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/strmforge/addonsync/internal/config"
	"github.com/strmforge/addonsync/internal/logging"
	"github.com/strmforge/addonsync/internal/models"
	"github.com/strmforge/addonsync/internal/stremio"
)

// decryptCredential recovers the user's auth key from the stored blob.
func (m *Manager) decryptCredential(user *models.User) (string, error) {
	if user.CredentialBlob == "" {
		return "", &CredentialError{UserID: user.ID, Err: ErrCredentialMissing}
	}
	authKey, err := m.enc.Decrypt(user.CredentialBlob)
	if err != nil {
		return "", &CredentialError{UserID: user.ID, Err: err}
	}
	return authKey, nil
}

// fetchCurrent loads the user's live collection. An auth-invalid
// response flags the user inactive so scheduled passes stop retrying a
// dead session until the user reconnects.
func (m *Manager) fetchCurrent(ctx context.Context, user *models.User, authKey string) ([]models.CollectionEntry, error) {
	current, err := m.client.GetCollection(ctx, authKey)
	if err == nil {
		return current, nil
	}

	if errors.Is(err, stremio.ErrAuthInvalid) {
		if setErr := m.store.SetUserActive(ctx, user.ID, false); setErr != nil {
			logging.Error().Err(setErr).Str("user_id", user.ID).Msg("Failed to flag user inactive after auth rejection")
		} else {
			logging.Warn().
				Str("user_id", user.ID).
				Str("username", user.Username).
				Str("credential", config.MaskCredential(authKey)).
				Msg("Session rejected by service, user flagged inactive")
		}
		return nil, &AuthInvalidError{UserID: user.ID, Err: err}
	}

	return nil, &FetchError{UserID: user.ID, Err: fmt.Errorf("fetch collection: %w", err)}
}

// applyCollection pushes the reconciled collection to the service.
func (m *Manager) applyCollection(ctx context.Context, user *models.User, authKey string, entries []models.CollectionEntry) error {
	if err := m.client.SetCollection(ctx, authKey, entries); err != nil {
		return &ExternalApplyError{UserID: user.ID, Err: fmt.Errorf("push collection: %w", err)}
	}
	m.persistSnapshot(ctx, user.ID, entries)
	return nil
}

// persistSnapshot records the last-known collection. Snapshot writes
// are best-effort: the sync already succeeded, so a storage hiccup here
// only costs the next advanced-mode run a manifest refetch.
func (m *Manager) persistSnapshot(ctx context.Context, userID string, entries []models.CollectionEntry) {
	if err := m.store.PutCollectionSnapshot(ctx, userID, entries); err != nil {
		logging.Warn().Err(err).Str("user_id", userID).Msg("Failed to persist collection snapshot")
	}
}
