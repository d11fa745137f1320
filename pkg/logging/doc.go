// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging carries a [log/slog.Logger] through context.Context so
// every layer of the credential subsystem logs with consistent,
// request-scoped attributes.
//
// Attach a logger near the top of a request:
//
//	ctx = logging.NewContext(ctx, logger)
//
// and retrieve it anywhere below:
//
//	logging.FromContext(ctx).Warn("skipping corrupt record", "address", addr)
//
// When no logger was attached, FromContext falls back to a JSON logger
// on stdout at info level, so logging always works.
package logging
