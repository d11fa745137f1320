// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import "context"

// AuthGateway is the boundary to the external identity provider. It
// performs the authorization-code exchange and identity lookup, handing
// back the verified identity and the issued credential.
//
// Failures are classified into the shared taxonomy: a rejected
// authorization wraps [ErrInvalidGrant], network failures wrap
// [ErrTransient].
type AuthGateway interface {
	Exchange(ctx context.Context, authCode, redirectURI string) (identity string, cred *Credential, err error)
}
