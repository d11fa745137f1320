// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import "context"

// CredentialRepository persists credentials keyed by user identity,
// independent of the storage backend.
type CredentialRepository interface {
	// Save encodes and durably writes the credential for identity.
	Save(ctx context.Context, identity string, cred *Credential) error

	// Load returns the stored credential for identity, or (nil, nil)
	// when no record exists or the record cannot be decoded.
	Load(ctx context.Context, identity string) (*Credential, error)

	// Delete removes the stored credential for identity. Deleting an
	// identity with no record succeeds silently.
	Delete(ctx context.Context, identity string) error

	// FindAny returns the first stored credential that decodes
	// successfully, skipping corrupt records. It returns ("", nil, nil)
	// when the store holds no decodable record. Enumeration order is
	// backend-defined; with more than one record the result is not
	// deterministic across calls.
	FindAny(ctx context.Context) (identity string, cred *Credential, err error)
}
