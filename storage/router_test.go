// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import "testing"

func TestIsRemote(t *testing.T) {
	tests := []struct {
		root string
		want bool
	}{
		{"gs://bucket/prefix", true},
		{"GS://bucket/prefix", true},
		{"Gs://bucket", true},
		{"/var/lib/creds", false},
		{"gs:/bucket", false},
		{"relative/dir", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			if got := IsRemote(tt.root); got != tt.want {
				t.Errorf("IsRemote(%q) = %v, want %v", tt.root, got, tt.want)
			}
		})
	}
}

func TestParseRemoteRoot(t *testing.T) {
	tests := []struct {
		root       string
		wantBucket string
		wantPrefix string
		wantErr    bool
	}{
		{root: "gs://bucket", wantBucket: "bucket"},
		{root: "gs://bucket/", wantBucket: "bucket"},
		{root: "gs://bucket/creds", wantBucket: "bucket", wantPrefix: "creds"},
		{root: "gs://bucket/creds/", wantBucket: "bucket", wantPrefix: "creds"},
		{root: "gs://bucket//creds//", wantBucket: "bucket", wantPrefix: "creds"},
		{root: "gs://bucket/a/b/", wantBucket: "bucket", wantPrefix: "a/b"},
		{root: "gs://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			bucket, prefix, err := parseRemoteRoot(tt.root)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRemoteRoot(%q) error = %v, wantErr %v", tt.root, err, tt.wantErr)
			}
			if bucket != tt.wantBucket || prefix != tt.wantPrefix {
				t.Errorf("parseRemoteRoot(%q) = (%q, %q), want (%q, %q)",
					tt.root, bucket, prefix, tt.wantBucket, tt.wantPrefix)
			}
		})
	}
}

func TestJoinPrefix(t *testing.T) {
	if got := joinPrefix("", "a.json"); got != "a.json" {
		t.Errorf("joinPrefix with empty prefix = %q", got)
	}
	if got := joinPrefix("creds", "a.json"); got != "creds/a.json" {
		t.Errorf("joinPrefix = %q, want creds/a.json", got)
	}
}
