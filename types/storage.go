// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import "context"

// BlobStore is the uniform blob interface over a configured storage
// root. Implementations are bound to one root at construction and are
// safe for concurrent use.
type BlobStore interface {
	// Exists reports whether the named blob exists. A missing blob is
	// not an error.
	Exists(ctx context.Context, name string) (bool, error)

	// Put atomically writes the blob; a concurrent Get never observes a
	// partial write.
	Put(ctx context.Context, name string, data []byte) error

	// Get returns the blob contents, or an error wrapping [ErrNotFound]
	// when the blob does not exist.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes the blob. Deleting a missing blob is a no-op.
	Delete(ctx context.Context, name string) error

	// List returns the names of all credential blobs under the root,
	// paging through the backend transparently. Order is backend-defined.
	List(ctx context.Context) ([]string, error)

	// Address returns the concrete address of the named blob for use in
	// logs and error messages.
	Address(name string) string
}
