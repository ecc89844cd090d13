// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v4"

	"github.com/strmforge/addonsync/internal/models"
)

// newTestStore opens an in-memory BadgerDB for the test.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("open in-memory badger: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close badger: %v", err)
		}
	})

	return NewWithDB(db)
}

func TestUserRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	user := &models.User{
		Username:      "alice",
		GroupID:       "g1",
		Active:        true,
		ProtectedURLs: []string{"https://keep.example/manifest.json"},
		ExcludedURLs:  []string{"https://skip.example/manifest.json"},
	}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID == "" {
		t.Fatal("CreateUser must assign an ID")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("CreateUser must set timestamps")
	}

	got, err := s.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "alice" || got.GroupID != "g1" || !got.Active {
		t.Errorf("unexpected user: %+v", got)
	}
	if len(got.ProtectedURLs) != 1 || len(got.ExcludedURLs) != 1 {
		t.Errorf("user lists not persisted: %+v", got)
	}
}

func TestGetUserNotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestListGroupUsers(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	for _, u := range []*models.User{
		{Username: "alice", GroupID: "g1"},
		{Username: "bob", GroupID: "g2"},
		{Username: "carol", GroupID: "g1"},
	} {
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser %s: %v", u.Username, err)
		}
	}

	members, err := s.ListGroupUsers(ctx, "g1")
	if err != nil {
		t.Fatalf("ListGroupUsers: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	for _, m := range members {
		if m.GroupID != "g1" {
			t.Errorf("member %s has group %s", m.Username, m.GroupID)
		}
	}

	all, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 users, got %d", len(all))
	}
}

func TestSetUserActive(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	user := &models.User{Username: "alice", Active: true}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := s.SetUserActive(ctx, user.ID, false); err != nil {
		t.Fatalf("SetUserActive: %v", err)
	}

	got, err := s.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Active {
		t.Error("expected user flagged inactive")
	}

	if err := s.SetUserActive(ctx, "missing", false); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSetUserCredentialReactivates(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	user := &models.User{Username: "alice", Active: false}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := s.SetUserCredential(ctx, user.ID, "blob"); err != nil {
		t.Fatalf("SetUserCredential: %v", err)
	}

	got, err := s.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.CredentialBlob != "blob" {
		t.Errorf("credential blob not stored: %q", got.CredentialBlob)
	}
	if !got.Active {
		t.Error("storing a credential must reactivate the user")
	}
}

func TestGroupRoundTripPreservesAddonOrder(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{
		Name: "Main",
		Addons: []models.AddonRef{
			{Identity: "c", ManifestURL: "https://c.example/manifest.json", Enabled: true},
			{Identity: "a", ManifestURL: "https://a.example/manifest.json", Enabled: true},
			{Identity: "b", ManifestURL: "https://b.example/manifest.json", Enabled: false},
		},
	}
	if err := s.PutGroup(ctx, group); err != nil {
		t.Fatalf("PutGroup: %v", err)
	}
	if group.ID == "" {
		t.Fatal("PutGroup must assign an ID")
	}

	got, err := s.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if len(got.Addons) != 3 {
		t.Fatalf("expected 3 addons, got %d", len(got.Addons))
	}
	// Stored order is the source of truth for collection order.
	for i, want := range []string{"c", "a", "b"} {
		if got.Addons[i].Identity != want {
			t.Errorf("addon %d: expected %q, got %q", i, want, got.Addons[i].Identity)
		}
	}

	if _, err := s.GetGroup(ctx, "missing"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestCollectionSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetCollectionSnapshot(ctx, "u1"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}

	entries := []models.CollectionEntry{
		{TransportURL: "https://a.example/manifest.json", Manifest: models.Manifest{ID: "a", Name: "A"}},
		{TransportURL: "https://b.example/manifest.json", Manifest: models.Manifest{ID: "b", Name: "B"}},
	}
	if err := s.PutCollectionSnapshot(ctx, "u1", entries); err != nil {
		t.Fatalf("PutCollectionSnapshot: %v", err)
	}

	got, err := s.GetCollectionSnapshot(ctx, "u1")
	if err != nil {
		t.Fatalf("GetCollectionSnapshot: %v", err)
	}
	if len(got) != 2 || got[0].Manifest.ID != "a" || got[1].Manifest.ID != "b" {
		t.Errorf("unexpected snapshot: %+v", got)
	}
}
