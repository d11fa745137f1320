// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package credential_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/go-a2a/credstore/credential"
	"github.com/go-a2a/credstore/storage"
	"github.com/go-a2a/credstore/types"
)

func testCredential() *types.Credential {
	return &types.Credential{
		AccessToken:   "ya29.access",
		RefreshToken:  "1//refresh",
		TokenEndpoint: "https://oauth2.example.com/token",
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		Scopes:        []string{"mail.read", "files.read"},
		Expiry:        time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestRepositorySaveLoadRoundTrip(t *testing.T) {
	ctx := t.Context()
	repo, err := credential.Open(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	want := testCredential()
	if err := repo.Save(ctx, "a@x.com", want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Load(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateComparable(time.Time{})); diff != "" {
		t.Errorf("loaded credential mismatch (-want +got):\n%s", diff)
	}
}

func TestRepositoryLoadAbsent(t *testing.T) {
	ctx := t.Context()
	repo, err := credential.Open(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	got, err := repo.Load(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("Load on empty repository: %v", err)
	}
	if got != nil {
		t.Errorf("Load on empty repository = %+v, want nil", got)
	}
}

func TestRepositoryDeleteIdempotent(t *testing.T) {
	ctx := t.Context()
	repo, err := credential.Open(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := repo.Save(ctx, "a@x.com", testCredential()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Present, absent, still absent: none may fail.
	for i := range 3 {
		if err := repo.Delete(ctx, "a@x.com"); err != nil {
			t.Fatalf("Delete #%d: %v", i+1, err)
		}
	}
	if err := repo.Delete(ctx, "never-existed@x.com"); err != nil {
		t.Errorf("Delete of never-saved identity: %v", err)
	}
}

func TestRepositoryLoadCorruptRecord(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()
	repo, err := credential.Open(ctx, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "broken@x.com.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	// One corrupt record must not fail the caller; it reads as absent.
	got, err := repo.Load(ctx, "broken@x.com")
	if err != nil {
		t.Fatalf("Load of corrupt record: %v", err)
	}
	if got != nil {
		t.Errorf("Load of corrupt record = %+v, want nil", got)
	}
}

func TestRepositoryFindAnySkipsCorrupt(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()
	repo, err := credential.Open(ctx, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	corrupt := heredoc.Doc(`
		{"access_token": 42, "scopes": "nope"}
	`)
	if err := os.WriteFile(filepath.Join(dir, "corrupt@x.com.json"), []byte(corrupt), 0o600); err != nil {
		t.Fatal(err)
	}
	want := testCredential()
	if err := repo.Save(ctx, "valid@x.com", want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	identity, got, err := repo.FindAny(ctx)
	if err != nil {
		t.Fatalf("FindAny: %v", err)
	}
	if identity != "valid@x.com" {
		t.Errorf("FindAny identity = %q, want %q", identity, "valid@x.com")
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateComparable(time.Time{})); diff != "" {
		t.Errorf("FindAny credential mismatch (-want +got):\n%s", diff)
	}
}

func TestRepositoryFindAnyEmpty(t *testing.T) {
	ctx := t.Context()
	repo, err := credential.Open(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	identity, cred, err := repo.FindAny(ctx)
	if err != nil {
		t.Fatalf("FindAny: %v", err)
	}
	if identity != "" || cred != nil {
		t.Errorf("FindAny on empty root = (%q, %+v), want absent", identity, cred)
	}
}

func TestRepositoryRejectsUnsafeIdentity(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()
	repo, err := credential.Open(ctx, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Identities carrying separators could address blobs outside the
	// storage root and must be rejected before any backend call.
	for _, identity := range []string{
		"",
		"../../etc/passwd",
		"a/b@x.com",
		`a\b@x.com`,
		"/etc/creds",
	} {
		t.Run(identity, func(t *testing.T) {
			if err := repo.Save(ctx, identity, testCredential()); err == nil {
				t.Errorf("Save(%q) succeeded, want rejection", identity)
			}
			if _, err := repo.Load(ctx, identity); err == nil {
				t.Errorf("Load(%q) succeeded, want rejection", identity)
			}
			if err := repo.Delete(ctx, identity); err == nil {
				t.Errorf("Delete(%q) succeeded, want rejection", identity)
			}
		})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("rejected identities left files behind: %v", entries)
	}
}

func TestRepositoryStorageSwitch(t *testing.T) {
	ctx := t.Context()

	oldRepo, err := credential.Open(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	// The in-memory backend stands in for the object-store leg; the real
	// GCS client needs an emulator and live backend credentials.
	newRepo := credential.NewRepository(storage.NewMemoryStore())

	want := testCredential()
	if err := oldRepo.Save(ctx, "u@x.com", want); err != nil {
		t.Fatalf("Save to old root: %v", err)
	}

	loaded, err := oldRepo.Load(ctx, "u@x.com")
	if err != nil {
		t.Fatalf("Load from old root: %v", err)
	}
	if err := newRepo.Save(ctx, "u@x.com", loaded); err != nil {
		t.Fatalf("Save to new root: %v", err)
	}

	got, err := newRepo.Load(ctx, "u@x.com")
	if err != nil {
		t.Fatalf("Load from new root: %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateComparable(time.Time{})); diff != "" {
		t.Errorf("credential changed across storage switch (-want +got):\n%s", diff)
	}

	// Deleting from the old root must not touch the new root's copy.
	if err := oldRepo.Delete(ctx, "u@x.com"); err != nil {
		t.Fatalf("Delete from old root: %v", err)
	}
	got, err = newRepo.Load(ctx, "u@x.com")
	if err != nil {
		t.Fatalf("Load from new root after old delete: %v", err)
	}
	if got == nil {
		t.Error("delete on old root removed the new root's copy")
	}
}
