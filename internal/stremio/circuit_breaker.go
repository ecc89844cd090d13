// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package stremio

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/strmforge/addonsync/internal/logging"
	"github.com/strmforge/addonsync/internal/metrics"
	"github.com/strmforge/addonsync/internal/models"
)

// CircuitBreakerClient wraps Client with a circuit breaker so a dead or
// rate-limited external service fails fast instead of queueing syncs.
//
// The breaker uses real time for its interval and timeout calculations,
// which is intentional for production resilience. Unit tests should
// exercise the wrapped client directly.
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient wraps the given client. Configuration:
// opens after a 60% failure rate over at least 10 requests, allows 3
// probe requests in half-open state, resets counts every minute while
// closed, and waits 2 minutes before probing an open circuit.
func NewCircuitBreakerClient(client *Client) *CircuitBreakerClient {
	cbName := "stremio-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},

		// Auth rejections are the caller's problem, not service
		// health; they must not trip the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrAuthInvalid)
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute wraps an external call with circuit breaker protection.
func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	return result, nil
}

// GetCollection fetches a user's collection with breaker protection.
func (cbc *CircuitBreakerClient) GetCollection(ctx context.Context, authKey string) ([]models.CollectionEntry, error) {
	result, err := cbc.execute(func() (interface{}, error) {
		return cbc.client.GetCollection(ctx, authKey)
	})
	if err != nil {
		return nil, err
	}
	entries, ok := result.([]models.CollectionEntry)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return entries, nil
}

// SetCollection replaces a user's collection with breaker protection.
func (cbc *CircuitBreakerClient) SetCollection(ctx context.Context, authKey string, entries []models.CollectionEntry) error {
	_, err := cbc.execute(func() (interface{}, error) {
		return nil, cbc.client.SetCollection(ctx, authKey, entries)
	})
	return err
}

// Ping verifies connectivity with breaker protection.
func (cbc *CircuitBreakerClient) Ping(ctx context.Context) error {
	_, err := cbc.execute(func() (interface{}, error) {
		return nil, cbc.client.Ping(ctx)
	})
	return err
}

// stateToFloat converts breaker state to the metric encoding.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts breaker state to a log label.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
