// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package sync

import (
	"errors"
	"fmt"
)

// ErrCredentialMissing indicates the user has no stored credential at
// all; the account was never connected.
var ErrCredentialMissing = errors.New("no stored credential")

// CredentialError indicates the stored credential is missing or fails
// to decrypt. It signals corrupted or stale credential storage, not a
// sync failure, and is never retried automatically.
type CredentialError struct {
	UserID string
	Err    error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential unusable for user %s: %v", e.UserID, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// AuthInvalidError indicates the external service rejected the
// credential as expired or invalid. The affected user is flagged
// inactive as a side effect, and the condition is surfaced as
// "reconnect", not as a generic error.
type AuthInvalidError struct {
	UserID string
	Err    error
}

func (e *AuthInvalidError) Error() string {
	return fmt.Sprintf("auth invalid for user %s: %v", e.UserID, e.Err)
}

func (e *AuthInvalidError) Unwrap() error { return e.Err }

// FetchError indicates the live collection fetch failed for a non-auth
// reason (network, 5xx, open circuit). Fatal to the sync attempt.
type FetchError struct {
	UserID string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("collection fetch failed for user %s: %v", e.UserID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExternalApplyError indicates the set-collection call failed. No
// partial collection is assumed applied.
type ExternalApplyError struct {
	UserID string
	Err    error
}

func (e *ExternalApplyError) Error() string {
	return fmt.Sprintf("collection apply failed for user %s: %v", e.UserID, e.Err)
}

func (e *ExternalApplyError) Unwrap() error { return e.Err }

// errorKind maps an engine error to its metrics/reporting label.
func errorKind(err error) string {
	var credErr *CredentialError
	var authErr *AuthInvalidError
	var fetchErr *FetchError
	var applyErr *ExternalApplyError

	switch {
	case errors.As(err, &credErr):
		return "credential"
	case errors.As(err, &authErr):
		return "auth_invalid"
	case errors.As(err, &fetchErr):
		return "fetch"
	case errors.As(err, &applyErr):
		return "apply"
	default:
		return "other"
	}
}
