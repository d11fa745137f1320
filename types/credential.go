// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"time"

	deepcopy "github.com/tiendc/go-deepcopy"
	"golang.org/x/oauth2"
)

// Credential holds one user's OAuth grant: the live tokens plus the
// metadata needed to refresh them at the provider's token endpoint.
type Credential struct {
	// AccessToken is the current bearer credential for the provider APIs.
	AccessToken string

	// RefreshToken refreshes the grant when the access token expires.
	// Empty means the grant is not refreshable; expiry then requires a
	// new authorization instead of a silent refresh.
	RefreshToken string

	// TokenEndpoint is the provider URL used for the refresh exchange.
	TokenEndpoint string

	ClientID     string
	ClientSecret string

	// Scopes is the non-empty set of scopes the grant was issued for.
	Scopes []string

	// Expiry is the absolute expiration time of AccessToken. The zero
	// value means no known expiry; the token is assumed valid until the
	// provider says otherwise.
	Expiry time.Time
}

// Refreshable reports whether the grant carries a refresh token.
func (c *Credential) Refreshable() bool {
	return c.RefreshToken != ""
}

// Expired reports whether the access token has expired as of now.
// Credentials without a known expiry never report expired.
func (c *Credential) Expired(now time.Time) bool {
	if c.Expiry.IsZero() {
		return false
	}
	return !c.Expiry.After(now)
}

// Token converts the credential into an [oauth2.Token] for use with an
// [oauth2.TokenSource].
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

// OAuth2Config builds the [oauth2.Config] targeting the credential's
// token endpoint. The returned config carries no auth-code URLs; it is
// only suitable for refresh exchanges.
func (c *Credential) OAuth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: c.TokenEndpoint,
		},
		Scopes: c.Scopes,
	}
}

// ApplyToken overwrites the live token fields from a freshly issued
// token. The refresh token is replaced only when the provider rotated it.
func (c *Credential) ApplyToken(tok *oauth2.Token) {
	c.AccessToken = tok.AccessToken
	c.Expiry = tok.Expiry
	if tok.RefreshToken != "" {
		c.RefreshToken = tok.RefreshToken
	}
}

// Clone returns a deep copy of the credential so callers can hold it
// without aliasing store-owned state.
func (c *Credential) Clone() *Credential {
	var out Credential
	if err := deepcopy.Copy(&out, c); err != nil {
		// Credential is a plain value type; copying it cannot fail.
		panic(err)
	}
	return &out
}
