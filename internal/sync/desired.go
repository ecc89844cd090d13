// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package sync

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/strmforge/addonsync/internal/manifest"
	"github.com/strmforge/addonsync/internal/metrics"
	"github.com/strmforge/addonsync/internal/models"
)

// ManifestResolver resolves a manifest URL to a document, degrading to
// fallback data instead of failing. Implemented by manifest.Resolver.
type ManifestResolver interface {
	Resolve(ctx context.Context, url string, fallback manifest.Fallback) manifest.Resolution
}

// DesiredSetBuilder turns a group's ordered addon list into the ordered
// collection entries the group expects a user to have, with exclusions
// removed and each entry carrying a full manifest document.
type DesiredSetBuilder struct {
	resolver    ManifestResolver
	concurrency int
}

// NewDesiredSetBuilder creates a builder. concurrency bounds parallel
// manifest fetches; values < 1 mean sequential.
func NewDesiredSetBuilder(resolver ManifestResolver, concurrency int) *DesiredSetBuilder {
	if concurrency < 1 {
		concurrency = 1
	}
	return &DesiredSetBuilder{resolver: resolver, concurrency: concurrency}
}

// Build produces the ordered desired collection for one user.
//
// Filtering: disabled addons are dropped, then any addon whose
// normalized manifest URL appears in exclusions, then duplicate URLs
// keeping first occurrence. Deduplication is by URL identity only,
// never by id or display name, since two distinct addons may
// legitimately share a name.
//
// Manifests: with refresh=false a stored snapshot is reused when
// available; refresh=true (advanced mode) re-fetches every manifest.
// Fetches run concurrently, bounded and failure-isolated: a failed
// fetch degrades to fallback data and never fails the build.
func (b *DesiredSetBuilder) Build(ctx context.Context, groupAddons []models.AddonRef, exclusions []string, refresh bool) []models.CollectionEntry {
	refs := filterDesired(groupAddons, exclusions)

	entries := make([]models.CollectionEntry, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i := range refs {
		g.Go(func() error {
			entries[i] = b.resolveEntry(gctx, refs[i], refresh)
			return nil
		})
	}
	// Workers never return errors; Wait only orders the writes.
	_ = g.Wait()

	return entries
}

// resolveEntry produces one collection entry for a desired addon.
func (b *DesiredSetBuilder) resolveEntry(ctx context.Context, ref models.AddonRef, refresh bool) models.CollectionEntry {
	if !refresh && ref.ManifestSnapshot != nil {
		return models.CollectionEntry{
			TransportURL: ref.ManifestURL,
			Manifest:     *ref.ManifestSnapshot,
		}
	}

	fallback := manifest.Fallback{
		ID:      ref.Identity,
		Name:    ref.DisplayName,
		Version: ref.Version,
	}
	if ref.ManifestSnapshot != nil {
		fallback.Description = ref.ManifestSnapshot.Description
	}

	res := b.resolver.Resolve(ctx, ref.ManifestURL, fallback)
	if res.Degraded {
		metrics.ManifestResolutions.WithLabelValues("degraded").Inc()
	} else {
		metrics.ManifestResolutions.WithLabelValues("live").Inc()
	}

	return models.CollectionEntry{
		TransportURL: ref.ManifestURL,
		Manifest:     res.Manifest,
	}
}

// filterDesired applies the enabled, exclusion, and URL-dedup filters,
// preserving the group's stored order.
func filterDesired(groupAddons []models.AddonRef, exclusions []string) []models.AddonRef {
	excluded := make(map[string]bool, len(exclusions))
	for _, url := range exclusions {
		if norm := models.NormalizeURL(url); norm != "" {
			excluded[norm] = true
		}
	}

	seen := make(map[string]bool, len(groupAddons))
	refs := make([]models.AddonRef, 0, len(groupAddons))
	for _, ref := range groupAddons {
		if !ref.Enabled {
			continue
		}
		norm := models.NormalizeURL(ref.ManifestURL)
		if norm == "" || excluded[norm] || seen[norm] {
			continue
		}
		seen[norm] = true
		refs = append(refs, ref)
	}
	return refs
}

// DesiredURLs returns the ordered normalized URLs of the desired set
// without resolving manifests. This is the cheap input for status
// evaluation, which never needs manifest content.
func DesiredURLs(groupAddons []models.AddonRef, exclusions []string) []string {
	refs := filterDesired(groupAddons, exclusions)
	urls := make([]string, len(refs))
	for i, ref := range refs {
		urls[i] = models.NormalizeURL(ref.ManifestURL)
	}
	return urls
}
