// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-a2a/credstore/types"
)

// OAuth2Revoker invalidates grants at an RFC 7009 revocation endpoint.
// Revoking the refresh token invalidates the whole grant, so it is
// preferred over the access token when present.
type OAuth2Revoker struct {
	endpoint string
	client   *http.Client
}

var _ types.Revoker = (*OAuth2Revoker)(nil)

// RevokerOption configures an [OAuth2Revoker].
type RevokerOption func(*OAuth2Revoker)

// WithRevokerHTTPClient overrides the HTTP client used for revocation.
func WithRevokerHTTPClient(client *http.Client) RevokerOption {
	return func(r *OAuth2Revoker) { r.client = client }
}

// NewOAuth2Revoker creates an [OAuth2Revoker] targeting endpoint.
func NewOAuth2Revoker(endpoint string, opts ...RevokerOption) *OAuth2Revoker {
	r := &OAuth2Revoker{
		endpoint: endpoint,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Revoke implements [types.Revoker].
func (r *OAuth2Revoker) Revoke(ctx context.Context, cred *types.Credential) error {
	token := cred.RefreshToken
	hint := "refresh_token"
	if token == "" {
		token = cred.AccessToken
		hint = "access_token"
	}

	form := url.Values{
		"token":           {token},
		"token_type_hint": {hint},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build revocation request for %s: %w", r.endpoint, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("revoke grant at %s: %w: %w", r.endpoint, types.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke grant at %s: provider returned %s", r.endpoint, resp.Status)
	}
	return nil
}
