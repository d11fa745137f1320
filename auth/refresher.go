// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/go-a2a/credstore/types"
)

// OAuth2Refresher exchanges refresh tokens at the credential's token
// endpoint via [oauth2.Config.TokenSource].
type OAuth2Refresher struct {
	client *http.Client
}

var _ types.Refresher = (*OAuth2Refresher)(nil)

// RefresherOption configures an [OAuth2Refresher].
type RefresherOption func(*OAuth2Refresher)

// WithHTTPClient overrides the HTTP client used for the exchange. For
// tests and custom transports.
func WithHTTPClient(client *http.Client) RefresherOption {
	return func(r *OAuth2Refresher) { r.client = client }
}

// NewOAuth2Refresher creates a new [OAuth2Refresher].
func NewOAuth2Refresher(opts ...RefresherOption) *OAuth2Refresher {
	r := &OAuth2Refresher{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh implements [types.Refresher]. The input credential is left
// untouched; the returned copy carries the new access token, expiry and,
// when the provider rotated it, refresh token.
func (r *OAuth2Refresher) Refresh(ctx context.Context, cred *types.Credential) (*types.Credential, error) {
	if !cred.Refreshable() {
		return nil, fmt.Errorf("credential has no refresh token: %w", types.ErrReauthenticationRequired)
	}
	if cred.TokenEndpoint == "" {
		return nil, fmt.Errorf("%w: credential has no token endpoint", types.ErrCorrupt)
	}

	if r.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.client)
	}

	// Present an already-expired token so the source always performs the
	// exchange instead of handing the stale access token back.
	current := &oauth2.Token{
		RefreshToken: cred.RefreshToken,
		Expiry:       time.Now().Add(-time.Hour),
	}

	tok, err := cred.OAuth2Config().TokenSource(ctx, current).Token()
	if err != nil {
		return nil, classifyExchangeError(cred.TokenEndpoint, err)
	}

	out := cred.Clone()
	out.ApplyToken(tok)
	return out, nil
}

// classifyExchangeError maps a token-endpoint failure into the shared
// taxonomy: provider rejections become [types.ErrInvalidGrant], server
// and network failures become [types.ErrTransient].
func classifyExchangeError(endpoint string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		code := 0
		if retrieveErr.Response != nil {
			code = retrieveErr.Response.StatusCode
		}
		if code >= http.StatusInternalServerError {
			return fmt.Errorf("token exchange with %s: %w: %w", endpoint, types.ErrTransient, err)
		}
		return fmt.Errorf("token exchange with %s: %w: %w", endpoint, types.ErrInvalidGrant, err)
	}
	return fmt.Errorf("token exchange with %s: %w: %w", endpoint, types.ErrTransient, err)
}
