// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package sync

import (
	"testing"

	"github.com/strmforge/addonsync/internal/models"
)

func TestResolveProtectionSafeMode(t *testing.T) {
	t.Parallel()

	prot := ResolveProtection(false, nil)

	for _, d := range defaultProtectedAddons {
		checkTrue(t, "default id "+d.id+" protected", prot.IsProtected(entry(d.id, "https://elsewhere.example/manifest.json")))
		checkTrue(t, "default url "+d.url+" protected", prot.IsProtectedURL(d.url))
	}

	checkFalse(t, "unrelated addon protected", prot.IsProtected(entry("x", "https://x.example/manifest.json")))
}

func TestResolveProtectionUnsafeMode(t *testing.T) {
	t.Parallel()

	prot := ResolveProtection(true, nil)

	for _, d := range defaultProtectedAddons {
		checkFalse(t, "default "+d.id+" protected in unsafe mode", prot.IsProtected(entry(d.id, d.url)))
	}
}

func TestResolveProtectionUserURLsSurviveUnsafeMode(t *testing.T) {
	t.Parallel()

	custom := "https://keep.example/manifest.json"

	for _, unsafe := range []bool{false, true} {
		prot := ResolveProtection(unsafe, []string{custom})
		checkTrue(t, "custom protected url", prot.IsProtectedURL(custom))
		// Case-insensitive, whitespace-tolerant matching.
		checkTrue(t, "custom protected url case variant", prot.IsProtectedURL("  HTTPS://KEEP.EXAMPLE/manifest.json"))
	}
}

func TestIsProtectedMatchesByIDOrURL(t *testing.T) {
	t.Parallel()

	prot := ResolveProtection(false, []string{"https://custom.example/manifest.json"})

	// ID match even when served from a non-canonical URL.
	checkTrue(t, "id match", prot.IsProtected(entry("com.linvo.cinemeta", "https://mirror.example/manifest.json")))

	// URL match even when the manifest id is missing.
	checkTrue(t, "url match without id", prot.IsProtected(models.CollectionEntry{
		TransportURL: "https://custom.example/manifest.json",
	}))

	// Empty id never matches the id set.
	checkFalse(t, "empty id treated as match", prot.IsProtected(models.CollectionEntry{
		TransportURL: "https://plain.example/manifest.json",
	}))
}
