// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package session provides the in-memory authority for authenticated
// user sessions.
//
// A session binds an opaque server-generated handle and a bearer token
// to exactly one user identity for its whole lifetime. The binding is a
// security invariant: resolving a handle against any other identity
// fails and is logged at error severity, never silently rebound.
//
// # Lifecycle
//
// Per session the store moves through
//
//	ACTIVE -> (REFRESHING) -> ACTIVE -> REVOKED
//
// REVOKED is terminal. Records are created on successful authentication,
// rehydrated lazily from the repository after a process restart, and
// destroyed on revocation.
//
// # Consistency with the repository
//
// The repository blob is the source of truth until a record is loaded;
// the in-memory record is the source of truth afterwards, and every
// mutation (refresh) is flushed back to the repository before the call
// that produced it returns.
//
// # Concurrency
//
// Resolution is partitioned by identity: concurrent resolves for the
// same expired identity share a single refresh exchange through a
// singleflight group, while different identities proceed independently.
// An in-flight refresh is never cancelled; wrap Resolve in a
// request-level timeout instead.
package session
