// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package sync

import (
	stdsync "sync"
)

// userLocker serializes sync execution per user. Two concurrent syncs
// for the same user would both read the same live collection, compute
// independently, and the later apply would silently discard the
// earlier one's changes; a manual click racing the scheduler must not
// do that. Locks for different users are independent.
type userLocker struct {
	mu    stdsync.Mutex
	locks map[string]*stdsync.Mutex
	busy  map[string]bool
}

func newUserLocker() *userLocker {
	return &userLocker{
		locks: make(map[string]*stdsync.Mutex),
		busy:  make(map[string]bool),
	}
}

// lock acquires the user's mutex and returns the matching unlock. The
// user is reported busy for the duration.
func (l *userLocker) lock(userID string) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &stdsync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()

	l.mu.Lock()
	l.busy[userID] = true
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.busy, userID)
		l.mu.Unlock()
		m.Unlock()
	}
}

// inFlight reports whether a sync currently holds the user's lock.
func (l *userLocker) inFlight(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.busy[userID]
}
