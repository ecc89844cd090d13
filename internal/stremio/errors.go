// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package stremio

import (
	"errors"
	"fmt"
)

// ErrAuthInvalid is returned when the external service rejects the auth
// key as expired or unknown. Callers treat it as a "reconnect" condition
// and flag the affected user inactive so scheduled syncs stop retrying a
// dead credential.
var ErrAuthInvalid = errors.New("auth key rejected by external service")

// sessionInvalidCodes are the API error codes that mean the session or
// user behind the auth key no longer exists.
var sessionInvalidCodes = map[int]bool{
	1: true, // session does not exist
	2: true, // user not found
}

// APIError is a structured error returned in the service's error
// envelope for non-auth failures.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}
