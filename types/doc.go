// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package types defines the shared data types, service interfaces and
// failure taxonomy of the credential subsystem. Implementations live in
// the storage, credential, session and auth packages.
package types
