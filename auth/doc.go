// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth implements the provider-facing exchanges of the
// credential subsystem: refreshing a grant at its token endpoint and
// best-effort revocation per RFC 7009.
//
// The authorization-code exchange itself is an external collaborator,
// reached only through [github.com/go-a2a/credstore/types.AuthGateway].
package auth
