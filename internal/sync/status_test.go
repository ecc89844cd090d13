// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package sync

import (
	"testing"

	"github.com/strmforge/addonsync/internal/models"
)

func TestCompareCollections(t *testing.T) {
	t.Parallel()

	prot := ResolveProtection(false, nil)

	tests := []struct {
		name        string
		current     []models.CollectionEntry
		desiredURLs []string
		want        models.SyncStatus
	}{
		{
			name: "exact match",
			current: []models.CollectionEntry{
				entry("a", "https://a.example/manifest.json"),
				entry("b", "https://b.example/manifest.json"),
			},
			desiredURLs: []string{"https://a.example/manifest.json", "https://b.example/manifest.json"},
			want:        models.StatusSynced,
		},
		{
			name: "missing desired addon",
			current: []models.CollectionEntry{
				entry("a", "https://a.example/manifest.json"),
			},
			desiredURLs: []string{"https://a.example/manifest.json", "https://b.example/manifest.json"},
			want:        models.StatusUnsynced,
		},
		{
			name: "unmanaged extra addon",
			current: []models.CollectionEntry{
				entry("a", "https://a.example/manifest.json"),
				entry("rogue", "https://rogue.example/manifest.json"),
			},
			desiredURLs: []string{"https://a.example/manifest.json"},
			want:        models.StatusUnsynced,
		},
		{
			name: "membership equal but order differs",
			current: []models.CollectionEntry{
				entry("b", "https://b.example/manifest.json"),
				entry("a", "https://a.example/manifest.json"),
			},
			desiredURLs: []string{"https://a.example/manifest.json", "https://b.example/manifest.json"},
			want:        models.StatusUnsynced,
		},
		{
			name: "protected entries ignored for membership and order",
			current: []models.CollectionEntry{
				entry("com.linvo.cinemeta", cinemetaURL),
				entry("a", "https://a.example/manifest.json"),
				entry("org.stremio.local", localURL),
				entry("b", "https://b.example/manifest.json"),
			},
			desiredURLs: []string{"https://a.example/manifest.json", "https://b.example/manifest.json"},
			want:        models.StatusSynced,
		},
		{
			name:        "empty desired and empty current",
			current:     nil,
			desiredURLs: nil,
			want:        models.StatusSynced,
		},
		{
			name: "only protected entries present",
			current: []models.CollectionEntry{
				entry("com.linvo.cinemeta", cinemetaURL),
			},
			desiredURLs: nil,
			want:        models.StatusSynced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CompareCollections(tt.current, tt.desiredURLs, prot)
			if got != tt.want {
				t.Errorf("CompareCollections() = %q, want %q", got, tt.want)
			}
		})
	}
}

// A protected addon that also appears in the desired list is pinned by
// the reconciler rather than placed by desired order, so the order
// check must skip it on both sides.
func TestCompareCollectionsProtectedAndDesired(t *testing.T) {
	t.Parallel()

	userProtected := "https://shield.example/manifest.json"
	prot := ResolveProtection(false, []string{userProtected})

	current := []models.CollectionEntry{
		entry("shield", userProtected),
		entry("a", "https://a.example/manifest.json"),
		entry("b", "https://b.example/manifest.json"),
	}
	desiredURLs := []string{
		"https://a.example/manifest.json",
		userProtected,
		"https://b.example/manifest.json",
	}

	got := CompareCollections(current, desiredURLs, prot)
	if got != models.StatusSynced {
		t.Errorf("CompareCollections() = %q, want %q", got, models.StatusSynced)
	}
}
