// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/strmforge/addonsync/internal/models"
	"github.com/strmforge/addonsync/internal/store"
	syncengine "github.com/strmforge/addonsync/internal/sync"
)

// SyncService is the sync manager surface the handlers consume.
// Implemented by sync.Manager.
type SyncService interface {
	SyncUser(ctx context.Context, userID string, opts syncengine.SyncOptions) (*models.SyncResult, error)
	SyncGroup(ctx context.Context, groupID string) (*models.GroupSyncResult, error)
	Status(ctx context.Context, userID string, unsafe bool) (*models.StatusResult, error)
	LastSyncTime() time.Time
}

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	service   SyncService
	version   string
	startTime time.Time
}

// NewHandler creates the handler set.
func NewHandler(service SyncService, version string) *Handler {
	return &Handler{
		service:   service,
		version:   version,
		startTime: time.Now(),
	}
}

// SyncUser handles POST /api/v1/users/{userID}/sync.
// Query parameters: mode=normal|advanced (default normal),
// unsafe=true|false (default false).
func (h *Handler) SyncUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		rw.BadRequest("user ID is required")
		return
	}

	opts, ok := parseSyncOptions(rw, r)
	if !ok {
		return
	}

	result, err := h.service.SyncUser(r.Context(), userID, opts)
	if err != nil {
		writeSyncError(rw, err, result)
		return
	}

	rw.Success(result)
}

// SyncGroup handles POST /api/v1/groups/{groupID}/sync.
// Per-member failures are reported inside the result, not as an HTTP
// error; only a missing group or a storage fault fails the request.
func (h *Handler) SyncGroup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	groupID := chi.URLParam(r, "groupID")
	if groupID == "" {
		rw.BadRequest("group ID is required")
		return
	}

	result, err := h.service.SyncGroup(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, store.ErrGroupNotFound) {
			rw.NotFound("group not found: " + groupID)
			return
		}
		rw.InternalError(err.Error())
		return
	}

	rw.Success(result)
}

// UserStatus handles GET /api/v1/users/{userID}/status.
// Query parameter: unsafe=true|false (default false), matching the
// protection mode the caller intends to sync with.
func (h *Handler) UserStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		rw.BadRequest("user ID is required")
		return
	}

	unsafe, ok := parseBoolParam(rw, r, "unsafe")
	if !ok {
		return
	}

	result, err := h.service.Status(r.Context(), userID, unsafe)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			rw.NotFound("user not found: " + userID)
			return
		}
		rw.InternalError(err.Error())
		return
	}

	rw.Success(result)
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status        string     `json:"status"`
	Version       string     `json:"version"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	LastSync      *time.Time `json:"last_sync,omitempty"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}
	if last := h.service.LastSyncTime(); !last.IsZero() {
		resp.LastSync = &last
	}

	NewResponseWriter(w, r).Success(resp)
}

// parseSyncOptions reads mode and unsafe query parameters. On invalid
// input it writes a 400 response and returns ok=false.
func parseSyncOptions(rw *ResponseWriter, r *http.Request) (syncengine.SyncOptions, bool) {
	opts := syncengine.SyncOptions{Mode: models.ModeNormal}

	switch mode := r.URL.Query().Get("mode"); mode {
	case "", string(models.ModeNormal):
	case string(models.ModeAdvanced):
		opts.Mode = models.ModeAdvanced
	default:
		rw.BadRequest("invalid mode: " + mode + " (expected normal or advanced)")
		return opts, false
	}

	unsafe, ok := parseBoolParam(rw, r, "unsafe")
	if !ok {
		return opts, false
	}
	opts.Unsafe = unsafe

	return opts, true
}

// parseBoolParam reads an optional boolean query parameter. On invalid
// input it writes a 400 response and returns ok=false.
func parseBoolParam(rw *ResponseWriter, r *http.Request, name string) (bool, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, true
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		rw.BadRequest("invalid " + name + " parameter: " + raw)
		return false, false
	}
	return value, true
}

// writeSyncError maps the engine's typed pipeline errors to response
// codes. The partial SyncResult is discarded; its Error field repeats
// the message already carried in the response envelope.
func writeSyncError(rw *ResponseWriter, err error, _ *models.SyncResult) {
	var (
		credErr  *syncengine.CredentialError
		authErr  *syncengine.AuthInvalidError
		fetchErr *syncengine.FetchError
		applyErr *syncengine.ExternalApplyError
	)

	switch {
	case errors.Is(err, store.ErrUserNotFound):
		rw.NotFound(err.Error())
	case errors.Is(err, store.ErrGroupNotFound):
		rw.NotFound(err.Error())
	case errors.As(err, &credErr):
		rw.Error(http.StatusConflict, ErrCodeNotConnected, "account not connected: "+credErr.Error())
	case errors.As(err, &authErr):
		rw.Error(http.StatusConflict, ErrCodeSessionInvalid, "session rejected by service, user must reconnect")
	case errors.As(err, &fetchErr):
		rw.ExternalServiceError(fetchErr)
	case errors.As(err, &applyErr):
		rw.ExternalServiceError(applyErr)
	default:
		rw.InternalError(err.Error())
	}
}
