// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ctxKey is the private context key type for logger propagation.
type ctxKey struct{}

// requestIDKey is the private context key type for request IDs.
type requestIDKey struct{}

// requestIDField is the structured field name for request correlation.
const requestIDField = "request_id"

// GenerateRequestID creates a new unique request ID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// WithRequestID returns a context carrying both the raw request ID and a
// child logger tagged with it. Downstream code retrieves the logger via
// Ctx and the ID via RequestIDFromContext.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	l := Logger().With().Str(requestIDField, requestID).Logger()
	ctx = context.WithValue(ctx, requestIDKey{}, requestID)
	return context.WithValue(ctx, ctxKey{}, l)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx != nil {
		if id, ok := ctx.Value(requestIDKey{}).(string); ok {
			return id
		}
	}
	return ""
}

// WithLogger returns a context carrying the given logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// Ctx returns the logger stored in ctx, or the global logger when the
// context carries none. Never returns a disabled logger.
func Ctx(ctx context.Context) zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
			return l
		}
	}
	return Logger()
}
