// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

// Package manifest fetches addon manifest documents over HTTP with
// graceful degradation.
//
// Manifest content is advisory: protection and identity decisions only
// depend on the id and manifest URL, both of which AddonSync already
// stores. A failed fetch (timeout, non-2xx, rate limit, malformed JSON)
// therefore degrades to a fallback document built from stored fields
// instead of failing the sync that requested it. The degradation is a
// typed result, not a swallowed error, so callers and tests can assert
// on which path was taken.
package manifest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/strmforge/addonsync/internal/logging"
	"github.com/strmforge/addonsync/internal/models"
)

// defaultTimeout bounds a single manifest fetch.
const defaultTimeout = 10 * time.Second

// Fallback carries the stored fields used to synthesize a manifest when
// the live fetch degrades.
type Fallback struct {
	ID          string
	Name        string
	Version     string
	Description string
}

// Resolution is the outcome of a manifest fetch. Exactly one of two
// shapes: a live manifest (Degraded false, Err nil) or a synthesized
// fallback (Degraded true, Err holding the fetch failure).
type Resolution struct {
	Manifest models.Manifest
	Degraded bool
	Err      error
}

// Resolver fetches manifest documents with a bounded timeout and a
// shared rate limit across all concurrent syncs.
type Resolver struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Options configures a Resolver.
type Options struct {
	// Timeout bounds each fetch. Default: 10s.
	Timeout time.Duration

	// RateLimit is the sustained fetch rate in requests per second
	// shared by all callers. Zero disables client-side pacing.
	RateLimit float64

	// Burst is the rate limiter burst size. Default: ceil(RateLimit).
	Burst int
}

// NewResolver creates a manifest resolver.
func NewResolver(opts Options) *Resolver {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = int(opts.RateLimit) + 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Resolver{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// Resolve fetches the manifest at url. On any failure it returns a
// degraded Resolution built from the fallback fields; it never returns
// an error to the caller.
func (r *Resolver) Resolve(ctx context.Context, url string, fallback Fallback) Resolution {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return r.degrade(url, fallback, fmt.Errorf("rate limiter wait: %w", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return r.degrade(url, fallback, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return r.degrade(url, fallback, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return r.degrade(url, fallback, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status))
	}

	var m models.Manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return r.degrade(url, fallback, fmt.Errorf("decode manifest: %w", err))
	}

	return Resolution{Manifest: m}
}

// degrade logs the fetch failure and synthesizes the fallback document.
func (r *Resolver) degrade(url string, fallback Fallback, err error) Resolution {
	logging.Warn().Err(err).Str("manifest_url", url).Msg("Manifest fetch degraded to stored fallback")
	return Resolution{
		Manifest: FallbackManifest(fallback),
		Degraded: true,
		Err:      err,
	}
}

// FallbackManifest builds a best-effort manifest document from stored
// fields: types pinned to ["other"], empty resources and catalogs.
func FallbackManifest(f Fallback) models.Manifest {
	return models.Manifest{
		ID:          f.ID,
		Version:     f.Version,
		Name:        f.Name,
		Description: f.Description,
		Types:       []string{"other"},
		Resources:   []json.RawMessage{},
		Catalogs:    []json.RawMessage{},
	}
}
