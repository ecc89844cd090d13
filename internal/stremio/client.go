// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

// Package stremio implements the client for the external
// addon-collection service (a Stremio-compatible datastore API).
//
// The engine consumes exactly three operations:
//
//   - GetCollection: fetch a user's live addon collection
//   - SetCollection: replace a user's collection wholesale
//   - Ping: connectivity probe for health reporting
//
// All calls use the service's JSON-RPC-ish envelope: POST with a JSON
// body carrying the auth key, responses wrapped in {result} or {error}.
// HTTP 429 responses are retried with exponential backoff honoring
// Retry-After; a session-invalid error code maps to ErrAuthInvalid so
// callers can distinguish "reconnect your account" from "try again
// later".
package stremio

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/strmforge/addonsync/internal/logging"
	"github.com/strmforge/addonsync/internal/models"
)

// addonCollectionKey is the datastore collection holding addon lists.
const addonCollectionKey = "addon_collection"

// defaultTimeout bounds every collection call. Collection call timeouts
// are fatal to the sync attempt that hit them.
const defaultTimeout = 30 * time.Second

// Retry defaults, applied when RetryConfig fields are unset.
const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 1 * time.Second
)

// RetryConfig shapes the backoff applied to rate-limited calls: up to
// Attempts retries, starting at Delay and doubling each attempt.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

// Client handles communication with the external addon-collection API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryConfig
}

// NewClient creates an external-service client. baseURL is the API root
// (e.g. "https://api.strem.io"); timeout <= 0 and zero retry fields
// select the defaults.
func NewClient(baseURL string, timeout time.Duration, retry RetryConfig) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if retry.Attempts < 1 {
		retry.Attempts = defaultRetryAttempts
	}
	if retry.Delay <= 0 {
		retry.Delay = defaultRetryDelay
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retry: retry,
	}
}

// apiEnvelope is the service's response wrapper.
type apiEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  *apiErrorBody   `json:"error"`
}

// apiErrorBody is the error half of the envelope.
type apiErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// collectionResult is the datastoreGet result for addon_collection.
type collectionResult struct {
	Addons       []models.CollectionEntry `json:"addons"`
	LastModified string                   `json:"lastModified,omitempty"`
}

// putResult is the datastorePut acknowledgement.
type putResult struct {
	Success bool `json:"success"`
}

// GetCollection fetches the user's current live addon collection.
func (c *Client) GetCollection(ctx context.Context, authKey string) ([]models.CollectionEntry, error) {
	body := map[string]interface{}{
		"authKey":    authKey,
		"collection": addonCollectionKey,
		"all":        true,
	}

	var result collectionResult
	if err := c.doAPIRequest(ctx, "/api/datastoreGet", body, &result); err != nil {
		return nil, err
	}
	return result.Addons, nil
}

// SetCollection replaces the user's collection with the given entries.
// The external service is the source of truth; no partial application is
// assumed on failure.
func (c *Client) SetCollection(ctx context.Context, authKey string, entries []models.CollectionEntry) error {
	if entries == nil {
		entries = []models.CollectionEntry{}
	}
	body := map[string]interface{}{
		"authKey":    authKey,
		"collection": addonCollectionKey,
		"addons":     entries,
	}

	var result putResult
	if err := c.doAPIRequest(ctx, "/api/datastorePut", body, &result); err != nil {
		return err
	}
	if !result.Success {
		return &APIError{Code: -1, Message: "set collection not acknowledged"}
	}
	return nil
}

// Ping verifies the API endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	resp.Body.Close()
	return nil
}

// doAPIRequest executes a POST call with the service envelope, decoding
// the result half into result. Session-invalid error codes map to
// ErrAuthInvalid; other envelope errors become *APIError.
func (c *Client) doAPIRequest(ctx context.Context, path string, body interface{}, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.doRequestWithRateLimit(ctx, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if envelope.Error != nil {
		if sessionInvalidCodes[envelope.Error.Code] {
			return fmt.Errorf("%w: %s", ErrAuthInvalid, envelope.Error.Message)
		}
		return &APIError{Code: envelope.Error.Code, Message: envelope.Error.Message}
	}

	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}

// doRequestWithRateLimit executes a POST with automatic retry on HTTP
// 429. Exponential backoff starting at the configured delay and
// doubling per attempt, Retry-After header honored when present.
func (c *Client) doRequestWithRateLimit(ctx context.Context, url string, payload []byte) (*http.Response, error) {
	maxRetries := c.retry.Attempts
	baseDelay := c.retry.Delay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		resp.Body.Close()

		if attempt == maxRetries {
			return nil, fmt.Errorf("rate limit exceeded after %d retries", maxRetries)
		}

		retryDelay := baseDelay * time.Duration(1<<attempt)
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				retryDelay = seconds
			}
		}

		logging.Warn().Dur("retry_delay", retryDelay).Int("attempt", attempt+1).Int("max_retries", maxRetries).Msg("External API rate limited (HTTP 429), retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return nil, fmt.Errorf("unreachable: retry loop must return or error")
}
