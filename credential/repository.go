// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-a2a/credstore/pkg/logging"
	"github.com/go-a2a/credstore/storage"
	"github.com/go-a2a/credstore/types"
)

// Repository persists credentials keyed by user identity over a
// [types.BlobStore].
type Repository struct {
	store types.BlobStore
}

var _ types.CredentialRepository = (*Repository)(nil)

// NewRepository creates a [Repository] over the given blob store.
func NewRepository(store types.BlobStore) *Repository {
	return &Repository{store: store}
}

// Open resolves the storage root and returns a [Repository] over the
// selected backend.
func Open(ctx context.Context, root string, opts ...storage.Option) (*Repository, error) {
	store, err := storage.Open(ctx, root, opts...)
	if err != nil {
		return nil, err
	}
	return NewRepository(store), nil
}

// blobName resolves an identity to its blob name under the root.
func blobName(identity string) string {
	return identity + storage.BlobSuffix
}

// checkIdentity rejects identities that cannot form a safe blob name.
// Identities come from the verified gateway, but separators would let a
// crafted value address blobs outside the storage root.
func checkIdentity(identity string) error {
	if identity == "" {
		return errors.New("identity must not be empty")
	}
	if strings.ContainsAny(identity, `/\`) {
		return fmt.Errorf("invalid identity %q: must not contain path separators", identity)
	}
	return nil
}

// Save implements [types.CredentialRepository].
func (r *Repository) Save(ctx context.Context, identity string, cred *types.Credential) error {
	if err := checkIdentity(identity); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	data, err := Encode(cred)
	if err != nil {
		return fmt.Errorf("save credential for %s: %w", identity, err)
	}
	return r.store.Put(ctx, blobName(identity), data)
}

// Load implements [types.CredentialRepository]. A missing record is
// absence, not an error. A corrupt record is logged and reported as
// absent so one bad blob cannot take down multi-user operation.
func (r *Repository) Load(ctx context.Context, identity string) (*types.Credential, error) {
	if err := checkIdentity(identity); err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	name := blobName(identity)

	data, err := r.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	cred, err := Decode(data)
	if err != nil {
		if errors.Is(err, types.ErrCorrupt) {
			logging.FromContext(ctx).WarnContext(ctx, "ignoring corrupt credential record",
				slog.String("address", r.store.Address(name)),
				slog.Any("error", err),
			)
			return nil, nil
		}
		return nil, err
	}

	return cred, nil
}

// Delete implements [types.CredentialRepository].
func (r *Repository) Delete(ctx context.Context, identity string) error {
	if err := checkIdentity(identity); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return r.store.Delete(ctx, blobName(identity))
}

// FindAny implements [types.CredentialRepository]. Intended for
// single-occupant deployments, it returns the first record that decodes,
// logging and skipping any that do not.
func (r *Repository) FindAny(ctx context.Context) (string, *types.Credential, error) {
	names, err := r.store.List(ctx)
	if err != nil {
		return "", nil, err
	}

	for _, name := range names {
		data, err := r.store.Get(ctx, name)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				// Deleted between list and get.
				continue
			}
			return "", nil, err
		}

		cred, err := Decode(data)
		if err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "skipping corrupt credential record",
				slog.String("address", r.store.Address(name)),
				slog.Any("error", err),
			)
			continue
		}

		return strings.TrimSuffix(name, storage.BlobSuffix), cred, nil
	}

	return "", nil, nil
}
