// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package sync

import (
	"github.com/strmforge/addonsync/internal/models"
)

// defaultProtectedAddon identifies a service-bundled addon that ships
// with every external-service account.
type defaultProtectedAddon struct {
	id  string
	url string
}

// defaultProtectedAddons are the well-known service-bundled addons.
// In safe mode the engine never moves or removes them; in unsafe mode
// they contribute nothing to the protected set.
var defaultProtectedAddons = []defaultProtectedAddon{
	{id: "com.linvo.cinemeta", url: "https://v3-cinemeta.strem.io/manifest.json"},
	{id: "org.stremio.local", url: "http://127.0.0.1:11470/local-addon/manifest.json"},
	{id: "com.stremio.watchhub", url: "https://watchhub.strem.io/manifest.json"},
	{id: "org.stremio.opensubtitlesv3", url: "https://opensubtitles-v3.strem.io/manifest.json"},
}

// ProtectionSet is the effective protected-identity set for one sync
// operation. It is constructed once per sync via ResolveProtection and
// threaded through explicitly; call sites never recompute default-addon
// membership inline.
type ProtectionSet struct {
	ids  map[string]bool
	urls map[string]bool
}

// ResolveProtection computes the protection set for a sync.
//
// In safe mode (unsafe=false) the set is seeded with the default
// service-bundled addon ids and canonical URLs. In unsafe mode the
// defaults contribute nothing. The user's custom protected URLs are
// added in both modes: a user can permanently shield any addon
// regardless of mode.
func ResolveProtection(unsafe bool, userProtectedURLs []string) ProtectionSet {
	set := ProtectionSet{
		ids:  make(map[string]bool),
		urls: make(map[string]bool),
	}

	if !unsafe {
		for _, d := range defaultProtectedAddons {
			set.ids[d.id] = true
			set.urls[models.NormalizeURL(d.url)] = true
		}
	}

	for _, url := range userProtectedURLs {
		if norm := models.NormalizeURL(url); norm != "" {
			set.urls[norm] = true
		}
	}

	return set
}

// IsProtected reports whether the entry must not be moved or removed:
// its manifest id is protected, or its transport URL is.
func (p ProtectionSet) IsProtected(entry models.CollectionEntry) bool {
	if entry.Manifest.ID != "" && p.ids[entry.Manifest.ID] {
		return true
	}
	return p.IsProtectedURL(entry.TransportURL)
}

// IsProtectedURL reports whether the normalized URL is protected.
func (p ProtectionSet) IsProtectedURL(url string) bool {
	return p.urls[models.NormalizeURL(url)]
}
