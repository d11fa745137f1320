// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package credential serializes OAuth credentials to a stable blob
// format and persists them per user identity through a storage backend.
//
// A credential for alice@example.com under root gs://bucket/creds/ lives
// at gs://bucket/creds/alice@example.com.json; under a local root it is
// the same filename inside the directory. The blob format keeps
// backward compatibility: canonical fields only on write, unknown fields
// tolerated on read.
package credential
