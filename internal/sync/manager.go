// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

/*
manager.go - Sync Manager Lifecycle and Orchestration

The Manager owns the per-user sync pipeline and its scheduling:

  - SyncUser(): one user's full reconcile-and-apply pipeline
  - SyncGroup(): bounded fan-out over a group's members
  - Status(): the read-only status path for UI polling
  - Start()/Stop(): scheduled background sync over all active users

Thread safety:
  - locks: per-user keyed mutexes serialize same-user syncs
  - mu: protects running and lastSync
  - the scheduler goroutine shuts down via stopChan + WaitGroup
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/strmforge/addonsync/internal/config"
	"github.com/strmforge/addonsync/internal/logging"
	"github.com/strmforge/addonsync/internal/metrics"
	"github.com/strmforge/addonsync/internal/models"
)

// Store is the persistence surface the engine consumes. Every method
// takes explicit record identifiers.
type Store interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	ListGroupUsers(ctx context.Context, groupID string) ([]*models.User, error)
	SetUserActive(ctx context.Context, userID string, active bool) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	PutCollectionSnapshot(ctx context.Context, userID string, entries []models.CollectionEntry) error
	GetCollectionSnapshot(ctx context.Context, userID string) ([]models.CollectionEntry, error)
}

// CollectionClient is the external service surface the engine consumes.
type CollectionClient interface {
	GetCollection(ctx context.Context, authKey string) ([]models.CollectionEntry, error)
	SetCollection(ctx context.Context, authKey string, entries []models.CollectionEntry) error
}

// SyncOptions selects the mode for a single sync run.
type SyncOptions struct {
	// Mode: advanced forces a manifest-refresh pass before reconciling.
	Mode models.SyncMode

	// Unsafe disables the default service-bundled protected set. The
	// user's custom protected list stays active regardless.
	Unsafe bool
}

// Manager orchestrates addon-collection synchronization.
type Manager struct {
	store   Store
	client  CollectionClient
	builder *DesiredSetBuilder
	enc     *config.CredentialEncryptor
	cfg     *config.Config

	locks *userLocker

	mu       stdsync.RWMutex
	running  bool
	lastSync time.Time
	stopChan chan struct{}
	wg       stdsync.WaitGroup
}

// NewManager creates a sync manager.
func NewManager(store Store, client CollectionClient, resolver ManifestResolver, enc *config.CredentialEncryptor, cfg *config.Config) *Manager {
	m := &Manager{
		store:    store,
		client:   client,
		builder:  NewDesiredSetBuilder(resolver, cfg.Sync.ManifestConcurrency),
		enc:      enc,
		cfg:      cfg,
		locks:    newUserLocker(),
		stopChan: make(chan struct{}),
	}

	logging.Info().
		Dur("interval", cfg.Sync.Interval).
		Int("group_concurrency", cfg.Sync.GroupConcurrency).
		Int("manifest_concurrency", cfg.Sync.ManifestConcurrency).
		Msg("Sync manager config loaded")

	return m
}

// Start begins scheduled synchronization. A zero interval leaves the
// scheduler off; manual triggers still work.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}
	m.running = true
	m.mu.Unlock()

	if m.cfg.Sync.Interval <= 0 {
		logging.Info().Msg("Scheduled sync disabled (sync.interval=0) - manual triggers only")
		return nil
	}

	logging.Info().Dur("interval", m.cfg.Sync.Interval).Msg("Starting scheduled sync...")
	m.wg.Add(1)
	go m.syncLoop(ctx)

	return nil
}

// Stop gracefully stops scheduled synchronization and waits for the
// loop to exit.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.running = false
	m.mu.Unlock()

	close(m.stopChan)
	m.wg.Wait()
	logging.Info().Msg("Sync manager stopped")

	return nil
}

// LastSyncTime returns the completion time of the last scheduled pass.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// syncLoop runs the scheduled full-sync pass until stopped.
func (m *Manager) syncLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Sync.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.syncAllUsers(ctx)
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// syncAllUsers runs the pipeline for every syncable user: active, with
// a stored credential and a group. Inactive users are skipped so a dead
// credential is not retried until the user reconnects.
func (m *Manager) syncAllUsers(ctx context.Context) {
	users, err := m.store.ListUsers(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Scheduled sync: listing users failed")
		return
	}

	var synced, failed int
	for _, user := range users {
		if !user.Active || user.CredentialBlob == "" || user.GroupID == "" {
			continue
		}
		result, err := m.SyncUser(ctx, user.ID, SyncOptions{Mode: models.ModeNormal})
		if err != nil {
			failed++
			logging.Warn().Err(err).Str("user_id", user.ID).Msg("Scheduled sync: user sync failed")
			continue
		}
		synced++
		if !result.AlreadySynced {
			logging.Info().Str("user_id", user.ID).Int("total", result.Total).Msg("Scheduled sync: collection updated")
		}
	}

	m.mu.Lock()
	m.lastSync = time.Now()
	m.mu.Unlock()

	logging.Info().Int("synced", synced).Int("failed", failed).Msg("Scheduled sync pass complete")
}

// SyncUser runs the full pipeline for one user. Same-user runs are
// serialized; the returned result is always non-nil and mirrors the
// error for caller reporting.
func (m *Manager) SyncUser(ctx context.Context, userID string, opts SyncOptions) (*models.SyncResult, error) {
	unlock := m.locks.lock(userID)
	defer unlock()

	start := time.Now()
	result, err := m.syncUserLocked(ctx, userID, opts)
	metrics.SyncDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.SyncOperations.WithLabelValues("failed").Inc()
		metrics.SyncErrors.WithLabelValues(errorKind(err)).Inc()
	case result.AlreadySynced:
		metrics.SyncOperations.WithLabelValues("noop").Inc()
	default:
		metrics.SyncOperations.WithLabelValues("applied").Inc()
	}

	return result, err
}

// syncUserLocked is the pipeline body; the caller holds the user lock.
func (m *Manager) syncUserLocked(ctx context.Context, userID string, opts SyncOptions) (*models.SyncResult, error) {
	result := &models.SyncResult{UserID: userID}

	fail := func(err error) (*models.SyncResult, error) {
		result.Error = err.Error()
		return result, err
	}

	user, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return fail(fmt.Errorf("load user: %w", err))
	}
	if user.GroupID == "" {
		return fail(fmt.Errorf("user %s has no group assigned", userID))
	}

	group, err := m.store.GetGroup(ctx, user.GroupID)
	if err != nil {
		return fail(fmt.Errorf("load group %s: %w", user.GroupID, err))
	}

	authKey, err := m.decryptCredential(user)
	if err != nil {
		return fail(err)
	}

	current, err := m.fetchCurrent(ctx, user, authKey)
	if err != nil {
		return fail(err)
	}

	prot := ResolveProtection(opts.Unsafe, user.ProtectedURLs)
	desired := m.builder.Build(ctx, group.Addons, user.ExcludedURLs, opts.Mode == models.ModeAdvanced)
	reconciled := Reconcile(current, desired, prot)

	if IsNoOp(current, reconciled) {
		m.persistSnapshot(ctx, userID, current)
		result.Success = true
		result.AlreadySynced = true
		result.Total = len(current)
		logging.Debug().Str("user_id", userID).Int("total", len(current)).Msg("Collection already in sync, skipping write")
		return result, nil
	}

	if err := m.applyCollection(ctx, user, authKey, reconciled); err != nil {
		return fail(err)
	}

	result.Success = true
	result.Total = len(reconciled)
	logging.Info().
		Str("user_id", userID).
		Str("username", user.Username).
		Int("previous", len(current)).
		Int("total", len(reconciled)).
		Msg("Collection synchronized")
	return result, nil
}

// SyncGroup runs the pipeline for every member of a group with bounded
// parallelism. One member's failure never aborts the others; failures
// are aggregated per user in the result.
func (m *Manager) SyncGroup(ctx context.Context, groupID string) (*models.GroupSyncResult, error) {
	if _, err := m.store.GetGroup(ctx, groupID); err != nil {
		return nil, fmt.Errorf("load group %s: %w", groupID, err)
	}

	members, err := m.store.ListGroupUsers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}

	result := &models.GroupSyncResult{
		GroupID:    groupID,
		TotalUsers: len(members),
	}

	var resultMu stdsync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Sync.GroupConcurrency)

	for _, member := range members {
		g.Go(func() error {
			_, err := m.SyncUser(gctx, member.ID, SyncOptions{Mode: models.ModeNormal})

			resultMu.Lock()
			defer resultMu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, models.UserSyncError{
					UserID:   member.ID,
					Username: member.Username,
					Error:    err.Error(),
				})
				return nil
			}
			result.SyncedCount++
			return nil
		})
	}
	// Workers swallow per-user errors into the aggregate.
	_ = g.Wait()

	logging.Info().
		Str("group_id", groupID).
		Int("synced", result.SyncedCount).
		Int("total", result.TotalUsers).
		Int("errors", len(result.Errors)).
		Msg("Group sync complete")
	return result, nil
}

// Status computes the display-facing sync status for one user without
// mutating anything except the inactive flag on an auth-invalid fetch.
func (m *Manager) Status(ctx context.Context, userID string, unsafe bool) (*models.StatusResult, error) {
	user, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	result := &models.StatusResult{UserID: userID, Status: models.StatusChecking}

	if m.locks.inFlight(userID) {
		result.Status = models.StatusSyncing
		return result, nil
	}

	if user.CredentialBlob == "" {
		result.Status = models.StatusConnect
		result.Message = "account not connected"
		return result, nil
	}
	if !user.Active {
		// Disabled with a saved credential: invite reconnection.
		result.Status = models.StatusConnect
		result.Message = "account disabled, reconnect to resume syncing"
		return result, nil
	}

	if user.GroupID == "" {
		result.Status = models.StatusStale
		result.Message = "user has no group"
		return result, nil
	}
	group, err := m.store.GetGroup(ctx, user.GroupID)
	if err != nil {
		return nil, fmt.Errorf("load group %s: %w", user.GroupID, err)
	}
	if len(group.Addons) == 0 {
		result.Status = models.StatusStale
		result.Message = "group has no addons"
		return result, nil
	}

	authKey, err := m.enc.Decrypt(user.CredentialBlob)
	if err != nil {
		result.Status = models.StatusConnect
		result.Message = "stored credential unusable, reconnect your account"
		return result, nil
	}

	current, err := m.fetchCurrent(ctx, user, authKey)
	if err != nil {
		var authErr *AuthInvalidError
		if errors.As(err, &authErr) {
			result.Status = models.StatusConnect
			result.Message = "session expired, reconnect your account"
			return result, nil
		}
		result.Status = models.StatusError
		result.Message = err.Error()
		// Best-effort: hand the UI the last persisted collection so it
		// can keep rendering while the service is unreachable.
		if cached, snapErr := m.store.GetCollectionSnapshot(ctx, userID); snapErr == nil {
			result.CachedCollection = cached
		}
		return result, nil
	}

	prot := ResolveProtection(unsafe, user.ProtectedURLs)
	desiredURLs := DesiredURLs(group.Addons, user.ExcludedURLs)
	result.Status = CompareCollections(current, desiredURLs, prot)
	return result, nil
}
