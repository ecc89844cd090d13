// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

// Package metrics provides Prometheus instrumentation for AddonSync.
//
// Exposed at /metrics in Prometheus text format. Collected series:
//
//   - sync_duration_seconds: per-user sync duration (histogram)
//   - sync_operations_total: sync outcomes (counter; outcome label:
//     applied, noop, failed)
//   - sync_errors_total: failed syncs by error kind (counter)
//   - manifest_resolutions_total: manifest fetch outcomes (counter;
//     outcome label: live, degraded)
//   - circuit_breaker_state: breaker state (gauge; 0=closed,
//     1=half-open, 2=open)
//   - circuit_breaker_requests_total: breaker outcomes (counter;
//     outcome label: success, failure, rejected)
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncDuration tracks per-user sync duration.
	SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sync_duration_seconds",
		Help:    "Duration of per-user sync operations",
		Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120},
	})

	// SyncOperations counts sync outcomes by result.
	SyncOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_operations_total",
		Help: "Total sync operations by outcome",
	}, []string{"outcome"})

	// SyncErrors counts failed syncs by error kind.
	SyncErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_errors_total",
		Help: "Total failed sync operations by error kind",
	}, []string{"error_type"})

	// ManifestResolutions counts manifest fetch outcomes.
	ManifestResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "manifest_resolutions_total",
		Help: "Total manifest resolutions by outcome",
	}, []string{"outcome"})

	// CircuitBreakerState reports the current breaker state per breaker.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	// CircuitBreakerTransitions counts breaker state transitions.
	CircuitBreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_transitions_total",
		Help: "Total circuit breaker state transitions",
	}, []string{"name", "from", "to"})

	// CircuitBreakerRequests counts breaker-wrapped request outcomes.
	CircuitBreakerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_requests_total",
		Help: "Total circuit breaker requests by outcome",
	}, []string{"name", "outcome"})
)
