// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package sync

import (
	"testing"

	"github.com/strmforge/addonsync/internal/models"
)

// entry builds a collection entry for reconciliation tests.
func entry(id, url string) models.CollectionEntry {
	return models.CollectionEntry{
		TransportURL: url,
		Manifest:     models.Manifest{ID: id, Name: id},
	}
}

// urlsOf extracts the transport URLs of a collection in order.
func urlsOf(entries []models.CollectionEntry) []string {
	urls := make([]string, len(entries))
	for i := range entries {
		urls[i] = entries[i].TransportURL
	}
	return urls
}

const (
	cinemetaURL = "https://v3-cinemeta.strem.io/manifest.json"
	localURL    = "http://127.0.0.1:11470/local-addon/manifest.json"
)

func TestReconcileEmptyCurrent(t *testing.T) {
	t.Parallel()

	desired := []models.CollectionEntry{
		entry("a", "https://a.example/manifest.json"),
		entry("b", "https://b.example/manifest.json"),
	}

	got := Reconcile(nil, desired, ResolveProtection(false, nil))

	checkURLOrder(t, "result", urlsOf(got), []string{
		"https://a.example/manifest.json",
		"https://b.example/manifest.json",
	})
}

func TestReconcileReplacesUnprotected(t *testing.T) {
	t.Parallel()

	current := []models.CollectionEntry{
		entry("old1", "https://old1.example/manifest.json"),
		entry("old2", "https://old2.example/manifest.json"),
	}
	desired := []models.CollectionEntry{
		entry("new1", "https://new1.example/manifest.json"),
		entry("new2", "https://new2.example/manifest.json"),
	}

	got := Reconcile(current, desired, ResolveProtection(false, nil))

	checkURLOrder(t, "result", urlsOf(got), []string{
		"https://new1.example/manifest.json",
		"https://new2.example/manifest.json",
	})
}

func TestReconcileLockedPositions(t *testing.T) {
	t.Parallel()

	// Protected entries at indices 0 and 2 must keep those exact
	// indices; desired entries fill the open slots in order and the
	// remainder is appended.
	current := []models.CollectionEntry{
		entry("com.linvo.cinemeta", cinemetaURL),
		entry("old", "https://old.example/manifest.json"),
		entry("org.stremio.local", localURL),
		entry("old2", "https://old2.example/manifest.json"),
	}
	desired := []models.CollectionEntry{
		entry("x", "https://x.example/manifest.json"),
		entry("y", "https://y.example/manifest.json"),
		entry("z", "https://z.example/manifest.json"),
	}

	got := Reconcile(current, desired, ResolveProtection(false, nil))

	checkURLOrder(t, "result", urlsOf(got), []string{
		cinemetaURL,
		"https://x.example/manifest.json",
		localURL,
		"https://y.example/manifest.json",
		"https://z.example/manifest.json",
	})
}

func TestReconcileDropsUnfilledSlots(t *testing.T) {
	t.Parallel()

	// Current has more room than desired has entries: the leftover
	// open slots vanish instead of leaving holes.
	current := []models.CollectionEntry{
		entry("old1", "https://old1.example/manifest.json"),
		entry("old2", "https://old2.example/manifest.json"),
		entry("old3", "https://old3.example/manifest.json"),
		entry("com.linvo.cinemeta", cinemetaURL),
	}
	desired := []models.CollectionEntry{
		entry("x", "https://x.example/manifest.json"),
	}

	got := Reconcile(current, desired, ResolveProtection(false, nil))

	checkURLOrder(t, "result", urlsOf(got), []string{
		"https://x.example/manifest.json",
		cinemetaURL,
	})
}

func TestReconcileEmptyDesiredClearsUnprotected(t *testing.T) {
	t.Parallel()

	current := []models.CollectionEntry{
		entry("a", "https://a.example/manifest.json"),
		entry("b", "https://b.example/manifest.json"),
		entry("c", "https://c.example/manifest.json"),
	}

	got := Reconcile(current, nil, ResolveProtection(true, nil))

	checkSliceLen(t, "result", len(got), 0)
}

func TestReconcileProtectedWinsCollision(t *testing.T) {
	t.Parallel()

	// The desired set lists a URL that is protected-in-place in the
	// current collection. The locked entry keeps its position and the
	// desired duplicate is dropped without shifting later entries.
	userProtected := "https://shield.example/manifest.json"
	current := []models.CollectionEntry{
		entry("a", "https://a.example/manifest.json"),
		entry("shield", userProtected),
	}
	desired := []models.CollectionEntry{
		entry("shield", userProtected),
		entry("x", "https://x.example/manifest.json"),
	}

	got := Reconcile(current, desired, ResolveProtection(false, []string{userProtected}))

	checkURLOrder(t, "result", urlsOf(got), []string{
		"https://x.example/manifest.json",
		userProtected,
	})
}

func TestReconcileDeduplicatesByURL(t *testing.T) {
	t.Parallel()

	desired := []models.CollectionEntry{
		entry("x", "https://x.example/manifest.json"),
		entry("x-again", "HTTPS://X.EXAMPLE/manifest.json"),
		entry("y", "https://y.example/manifest.json"),
	}

	got := Reconcile(nil, desired, ResolveProtection(false, nil))

	// First occurrence wins; the case-variant duplicate is dropped.
	checkURLOrder(t, "result", urlsOf(got), []string{
		"https://x.example/manifest.json",
		"https://y.example/manifest.json",
	})
	checkStringEqual(t, "kept manifest id", got[0].Manifest.ID, "x")
}

func TestReconcileUnsafeModeReplacesDefaults(t *testing.T) {
	t.Parallel()

	current := []models.CollectionEntry{
		entry("com.linvo.cinemeta", cinemetaURL),
		entry("old", "https://old.example/manifest.json"),
	}
	desired := []models.CollectionEntry{
		entry("x", "https://x.example/manifest.json"),
	}

	got := Reconcile(current, desired, ResolveProtection(true, nil))

	checkURLOrder(t, "result", urlsOf(got), []string{
		"https://x.example/manifest.json",
	})
}

func TestReconcileIdempotent(t *testing.T) {
	t.Parallel()

	prot := ResolveProtection(false, nil)
	current := []models.CollectionEntry{
		entry("com.linvo.cinemeta", cinemetaURL),
		entry("old", "https://old.example/manifest.json"),
		entry("org.stremio.local", localURL),
	}
	desired := []models.CollectionEntry{
		entry("x", "https://x.example/manifest.json"),
		entry("y", "https://y.example/manifest.json"),
	}

	first := Reconcile(current, desired, prot)
	second := Reconcile(first, desired, prot)

	checkURLOrder(t, "second pass", urlsOf(second), urlsOf(first))
	checkTrue(t, "second pass is a no-op", IsNoOp(first, second))
}

func TestIsNoOp(t *testing.T) {
	t.Parallel()

	a := entry("a", "https://a.example/manifest.json")
	b := entry("b", "https://b.example/manifest.json")

	tests := []struct {
		name       string
		current    []models.CollectionEntry
		reconciled []models.CollectionEntry
		want       bool
	}{
		{
			name:       "identical",
			current:    []models.CollectionEntry{a, b},
			reconciled: []models.CollectionEntry{a, b},
			want:       true,
		},
		{
			name:       "both empty",
			current:    nil,
			reconciled: nil,
			want:       true,
		},
		{
			name:       "order changed",
			current:    []models.CollectionEntry{a, b},
			reconciled: []models.CollectionEntry{b, a},
			want:       false,
		},
		{
			name:       "length changed",
			current:    []models.CollectionEntry{a, b},
			reconciled: []models.CollectionEntry{a},
			want:       false,
		},
		{
			name:       "same url new manifest id",
			current:    []models.CollectionEntry{a},
			reconciled: []models.CollectionEntry{entry("a2", "https://a.example/manifest.json")},
			want:       false,
		},
		{
			name:       "url case variant",
			current:    []models.CollectionEntry{a},
			reconciled: []models.CollectionEntry{entry("a", "HTTPS://A.EXAMPLE/manifest.json")},
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsNoOp(tt.current, tt.reconciled); got != tt.want {
				t.Errorf("IsNoOp() = %v, want %v", got, tt.want)
			}
		})
	}
}
