// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"fmt"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/go-a2a/credstore/types"
)

// record is the wire form of a credential blob. The format is stable:
// every field is always present, with null marking an absent refresh
// token or expiry. Unknown fields are tolerated on read and dropped on
// write.
type record struct {
	AccessToken   string   `json:"access_token"`
	RefreshToken  *string  `json:"refresh_token"`
	TokenEndpoint string   `json:"token_endpoint"`
	ClientID      string   `json:"client_id"`
	ClientSecret  string   `json:"client_secret"`
	Scopes        []string `json:"scopes"`
	Expiry        *string  `json:"expiry"`
}

// Encode serializes a credential to its canonical blob form. Timestamps
// are written as RFC 3339 UTC.
func Encode(cred *types.Credential) ([]byte, error) {
	rec := record{
		AccessToken:   cred.AccessToken,
		TokenEndpoint: cred.TokenEndpoint,
		ClientID:      cred.ClientID,
		ClientSecret:  cred.ClientSecret,
		Scopes:        cred.Scopes,
	}
	if cred.RefreshToken != "" {
		rec.RefreshToken = &cred.RefreshToken
	}
	if !cred.Expiry.IsZero() {
		expiry := cred.Expiry.UTC().Format(time.RFC3339Nano)
		rec.Expiry = &expiry
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode credential: %w", err)
	}
	return data, nil
}

// Decode parses a credential blob. Structurally invalid input and input
// missing a required field both fail with [types.ErrCorrupt]; low-level
// parse errors never leak through unclassified.
func Decode(data []byte) (*types.Credential, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrCorrupt, err)
	}

	switch {
	case rec.AccessToken == "":
		return nil, fmt.Errorf("%w: missing access_token", types.ErrCorrupt)
	case rec.TokenEndpoint == "":
		return nil, fmt.Errorf("%w: missing token_endpoint", types.ErrCorrupt)
	case rec.ClientID == "":
		return nil, fmt.Errorf("%w: missing client_id", types.ErrCorrupt)
	case rec.ClientSecret == "":
		return nil, fmt.Errorf("%w: missing client_secret", types.ErrCorrupt)
	case len(rec.Scopes) == 0:
		return nil, fmt.Errorf("%w: missing scopes", types.ErrCorrupt)
	}

	cred := &types.Credential{
		AccessToken:   rec.AccessToken,
		TokenEndpoint: rec.TokenEndpoint,
		ClientID:      rec.ClientID,
		ClientSecret:  rec.ClientSecret,
		Scopes:        rec.Scopes,
	}
	if rec.RefreshToken != nil {
		cred.RefreshToken = *rec.RefreshToken
	}
	if rec.Expiry != nil {
		expiry, err := time.Parse(time.RFC3339Nano, *rec.Expiry)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid expiry %q: %w", types.ErrCorrupt, *rec.Expiry, err)
		}
		cred.Expiry = expiry.UTC()
	}

	return cred, nil
}
