// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import "context"

// Refresher performs the refresh exchange against a provider token
// endpoint, returning a new credential with a fresh access token.
type Refresher interface {
	// Refresh exchanges the credential's refresh token for a new access
	// token. The input credential is not mutated. Refresh of a
	// non-refreshable credential fails with [ErrReauthenticationRequired].
	Refresh(ctx context.Context, cred *Credential) (*Credential, error)
}

// Revoker invalidates a grant at the identity provider. Revocation is
// best effort; local session and repository removal is the authoritative
// security boundary.
type Revoker interface {
	Revoke(ctx context.Context, cred *Credential) error
}
