// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package credstore manages authenticated user sessions and the durable
// persistence of their OAuth credentials behind a storage-agnostic blob
// interface (local filesystem or Google Cloud Storage).
package credstore

// Version is the version of the credential store subsystem.
var Version = "v0.0.0"
