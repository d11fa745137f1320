// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/go-a2a/credstore/types"
)

// State is the lifecycle state of a session record.
type State int

const (
	// StateActive means the session is live and resolvable.
	StateActive State = iota

	// StateRefreshing means a refresh exchange is in flight for the
	// record's credential.
	StateRefreshing

	// StateRevoked is terminal; a revoked record never becomes active
	// again.
	StateRevoked
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateRefreshing:
		return "refreshing"
	case StateRevoked:
		return "revoked"
	default:
		return "unknown"
	}
}

// Record binds a session handle and bearer token to a user identity and
// that user's live credential. Records are owned exclusively by the
// [Store]; the identity never changes for the lifetime of the record.
type Record struct {
	// Handle is the opaque server-generated session identifier.
	Handle string

	// BearerToken proves possession of the session on tool calls.
	BearerToken string

	// Identity is the verified user identity the session is bound to.
	Identity string

	// Credential is the store-owned copy of the user's grant, replaced
	// in place on refresh.
	Credential *types.Credential

	CreatedAt  time.Time
	LastUsedAt time.Time

	state State
}

// State returns the record's lifecycle state.
func (r *Record) State() State {
	return r.state
}

// newBearerToken returns a cryptographically unguessable opaque token,
// independent of the session handle.
func newBearerToken() string {
	buf := make([]byte, 32)
	// rand.Read never fails on supported platforms.
	rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}
