// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"errors"
	"fmt"
)

// Failure taxonomy shared by the storage, repository and session layers.
// Callers classify failures with [errors.Is] against these sentinels.
var (
	// ErrCredentialsUnavailable means authentication to the remote
	// storage backend is not configured in the process environment.
	ErrCredentialsUnavailable = errors.New("storage backend credentials unavailable")

	// ErrBucketNotFound means the configured storage bucket does not exist.
	ErrBucketNotFound = errors.New("storage bucket not found")

	// ErrAccessDenied means the caller or the backend principal lacks a
	// required capability.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound means the addressed blob does not exist. It is surfaced
	// only where the operation requires the blob to exist (get/load);
	// exists and delete absorb it.
	ErrNotFound = errors.New("not found")

	// ErrCorrupt means a payload is not a valid serialized credential.
	ErrCorrupt = errors.New("corrupt credential record")

	// ErrTransient marks network or timeout failures that are safe to retry.
	ErrTransient = errors.New("transient storage failure")

	// ErrReauthenticationRequired means the grant expired and cannot be
	// silently refreshed; the user must authorize again.
	ErrReauthenticationRequired = errors.New("reauthentication required")

	// ErrInvalidGrant means the identity provider rejected the grant
	// (revoked, expired or malformed authorization).
	ErrInvalidGrant = errors.New("invalid grant")

	// ErrUnexpected classifies failures outside the taxonomy. They are
	// logged with full context before propagating.
	ErrUnexpected = errors.New("unexpected storage failure")
)

// ErrSecurityViolation marks an attempt to resolve a session handle
// against an identity other than the one it is bound to. It wraps
// [ErrAccessDenied] so access checks catch it without a separate branch.
var ErrSecurityViolation = fmt.Errorf("session identity mismatch: %w", ErrAccessDenied)

// StorageError wraps a backend failure with the context an operator
// needs to remediate it without reading source: the operation, the
// concrete resource, and for permission failures the missing capability.
//
// The underlying provider error types cannot carry extra message text,
// so StorageError holds the original cause as a nested field instead of
// re-raising the provider's type with new text.
type StorageError struct {
	// Op is the storage operation that failed (get, put, delete, list).
	Op string

	// Resource names the concrete target, e.g. "gs://bucket/prefix/user.json"
	// or "/var/lib/creds/user.json".
	Resource string

	// Kind is the taxonomy sentinel classifying the failure.
	Kind error

	// Permission is the minimal capability missing, set for access
	// failures (e.g. "storage.objects.get").
	Permission string

	// Remedy is an operator-facing remediation hint, when one is known.
	Remedy string

	// Cause is the original backend error.
	Cause error
}

// Error implements error.
func (e *StorageError) Error() string {
	msg := fmt.Sprintf("storage %s %s: %v", e.Op, e.Resource, e.Kind)
	if e.Permission != "" {
		msg += fmt.Sprintf(" (requires %s)", e.Permission)
	}
	if e.Remedy != "" {
		msg += fmt.Sprintf("; remediation: %s", e.Remedy)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap exposes both the taxonomy sentinel and the original cause to
// [errors.Is] and [errors.As].
func (e *StorageError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}
