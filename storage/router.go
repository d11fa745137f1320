// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"

	"github.com/go-a2a/credstore/types"
)

const (
	// Scheme is the URI scheme selecting the Google Cloud Storage
	// backend. Matching is case-insensitive.
	Scheme = "gs://"

	// BlobSuffix is the filename suffix of credential blobs. List
	// operations filter to it.
	BlobSuffix = ".json"
)

// IsRemote reports whether the storage root addresses the object-store
// backend rather than the local filesystem.
func IsRemote(root string) bool {
	return len(root) >= len(Scheme) && strings.EqualFold(root[:len(Scheme)], Scheme)
}

// Option configures backend construction.
type Option func(*config)

type config struct {
	kmsKey     string
	clientOpts []option.ClientOption
}

// WithKMSKey sets the Cloud KMS key used to encrypt blobs written to the
// object-store backend. Ignored by the local backend.
func WithKMSKey(name string) Option {
	return func(c *config) { c.kmsKey = name }
}

// WithClientOptions appends client options for the object-store backend,
// used by tests to point at a fake server. Ignored by the local backend.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(c *config) { c.clientOpts = append(c.clientOpts, opts...) }
}

// Open inspects the storage root once and returns the backend it
// selects: a [GCSStore] for gs:// roots, otherwise a [LocalStore] rooted
// at the directory named by root. Local directories are created on
// demand by the first write.
func Open(ctx context.Context, root string, opts ...Option) (types.BlobStore, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if IsRemote(root) {
		return newGCSStore(ctx, root, &cfg)
	}
	return NewLocalStore(strings.TrimRight(root, "/")), nil
}

// parseRemoteRoot splits a gs://bucket/optional/prefix/ root into bucket
// and normalized prefix. The prefix never carries leading or trailing
// separators; joining is done with exactly one separator.
func parseRemoteRoot(root string) (bucket, prefix string, err error) {
	rest := root[len(Scheme):]
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("storage root %q: missing bucket name", root)
	}
	prefix = strings.Trim(prefix, "/")
	return bucket, prefix, nil
}

// joinPrefix joins a normalized prefix and a blob name with exactly one
// separator, tolerating an empty prefix.
func joinPrefix(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
