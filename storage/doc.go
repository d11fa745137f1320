// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package storage provides the blob backends behind credential
// persistence and the router that selects one from a configured storage
// root.
//
// A root of the form gs://bucket/optional/prefix/ (scheme matched
// case-insensitively, trailing slash optional) selects the Google Cloud
// Storage backend; any other string is treated as a local directory
// path. The backend is selected once by [Open], not per call.
//
// # Consistency
//
// Local writes go through a temp-file-and-rename so readers never see a
// partial blob. Object-store writes rely on GCS object atomicity. No
// cross-instance locking is provided: when two server instances write
// the same blob concurrently the last writer wins. Callers wanting
// stronger guarantees would need generation-match preconditions on the
// object store; this package deliberately does not add them.
//
// # Errors
//
// Backend failures are classified into the taxonomy in
// [github.com/go-a2a/credstore/types] and wrapped in a
// [types.StorageError] naming the concrete resource and, for permission
// failures, the missing capability.
package storage
