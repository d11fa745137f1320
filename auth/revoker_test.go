// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-a2a/credstore/auth"
	"github.com/go-a2a/credstore/types"
)

func TestOAuth2RevokerPrefersRefreshToken(t *testing.T) {
	var gotToken, gotHint string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse revocation request: %v", err)
		}
		gotToken = r.PostFormValue("token")
		gotHint = r.PostFormValue("token_type_hint")
	}))
	defer srv.Close()

	revoker := auth.NewOAuth2Revoker(srv.URL, auth.WithRevokerHTTPClient(srv.Client()))
	cred := &types.Credential{AccessToken: "access", RefreshToken: "refresh"}

	if err := revoker.Revoke(t.Context(), cred); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if gotToken != "refresh" || gotHint != "refresh_token" {
		t.Errorf("revoked (%q, %q), want the refresh token with its hint", gotToken, gotHint)
	}
}

func TestOAuth2RevokerFallsBackToAccessToken(t *testing.T) {
	var gotToken, gotHint string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotToken = r.PostFormValue("token")
		gotHint = r.PostFormValue("token_type_hint")
	}))
	defer srv.Close()

	revoker := auth.NewOAuth2Revoker(srv.URL, auth.WithRevokerHTTPClient(srv.Client()))
	cred := &types.Credential{AccessToken: "access"}

	if err := revoker.Revoke(t.Context(), cred); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if gotToken != "access" || gotHint != "access_token" {
		t.Errorf("revoked (%q, %q), want the access token with its hint", gotToken, gotHint)
	}
}

func TestOAuth2RevokerProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	revoker := auth.NewOAuth2Revoker(srv.URL, auth.WithRevokerHTTPClient(srv.Client()))
	cred := &types.Credential{AccessToken: "access", RefreshToken: "refresh"}

	if err := revoker.Revoke(t.Context(), cred); err == nil {
		t.Error("Revoke against failing provider returned nil error")
	}
}
