// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

// Package store provides BadgerDB-backed persistence for AddonSync.
//
// The engine reads the operator-managed surface (users, groups, ordered
// group addon lists, per-user exclusion/protected lists, encrypted
// credential blobs) and writes per-user collection snapshots. Every
// method takes a context and explicit record identifiers; there is no
// ambient "current account" handle anywhere in the call path.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/strmforge/addonsync/internal/models"
)

// Key prefixes for BadgerDB storage.
const (
	userKeyPrefix     = "user:"
	groupKeyPrefix    = "group:"
	snapshotKeyPrefix = "snapshot:"
)

var (
	// ErrUserNotFound is returned when a user record does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrGroupNotFound is returned when a group record does not exist.
	ErrGroupNotFound = errors.New("group not found")

	// ErrSnapshotNotFound is returned when no collection snapshot has
	// been persisted for a user.
	ErrSnapshotNotFound = errors.New("collection snapshot not found")
)

// Store is the BadgerDB-backed persistence layer.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an already-open BadgerDB handle. Used by tests with
// in-memory databases.
func NewWithDB(db *badger.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser persists a new user, assigning an ID and timestamps when
// missing.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	return s.putJSON(userKeyPrefix+user.ID, user)
}

// PutUser overwrites a user record, refreshing its update timestamp.
func (s *Store) PutUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	return s.putJSON(userKeyPrefix+user.ID, user)
}

// GetUser fetches a user by ID.
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.getJSON(userKeyPrefix+userID, &user, ErrUserNotFound); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all user records.
func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(userKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var user models.User
				if err := json.Unmarshal(val, &user); err != nil {
					return fmt.Errorf("unmarshal user: %w", err)
				}
				users = append(users, &user)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListGroupUsers returns all users belonging to the given group.
func (s *Store) ListGroupUsers(ctx context.Context, groupID string) ([]*models.User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	members := users[:0]
	for _, u := range users {
		if u.GroupID == groupID {
			members = append(members, u)
		}
	}
	return members, nil
}

// SetUserActive flips the user's active flag. Used as the side effect of
// an auth-invalid response so scheduled syncs stop retrying a dead
// credential until the user reconnects.
func (s *Store) SetUserActive(ctx context.Context, userID string, active bool) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	user.Active = active
	return s.PutUser(ctx, user)
}

// SetUserCredential stores the encrypted credential blob and reactivates
// the user.
func (s *Store) SetUserCredential(ctx context.Context, userID, credentialBlob string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	user.CredentialBlob = credentialBlob
	user.Active = true
	return s.PutUser(ctx, user)
}

// PutGroup persists a group with its ordered addon list.
func (s *Store) PutGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
		group.CreatedAt = time.Now().UTC()
	}
	group.UpdatedAt = time.Now().UTC()
	return s.putJSON(groupKeyPrefix+group.ID, group)
}

// GetGroup fetches a group by ID.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var group models.Group
	if err := s.getJSON(groupKeyPrefix+groupID, &group, ErrGroupNotFound); err != nil {
		return nil, err
	}
	return &group, nil
}

// PutCollectionSnapshot stores the user's last-known live collection.
// Best-effort cache for display and fallback; the external service
// remains the source of truth.
func (s *Store) PutCollectionSnapshot(ctx context.Context, userID string, entries []models.CollectionEntry) error {
	return s.putJSON(snapshotKeyPrefix+userID, entries)
}

// GetCollectionSnapshot fetches the user's last-known collection.
func (s *Store) GetCollectionSnapshot(ctx context.Context, userID string) ([]models.CollectionEntry, error) {
	var entries []models.CollectionEntry
	if err := s.getJSON(snapshotKeyPrefix+userID, &entries, ErrSnapshotNotFound); err != nil {
		return nil, err
	}
	return entries, nil
}

// putJSON marshals value and writes it under key.
func (s *Store) putJSON(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// getJSON reads key and unmarshals into value, mapping a missing key to
// notFound.
func (s *Store) getJSON(key string, value interface{}, notFound error) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return notFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, value)
		})
	})
}
