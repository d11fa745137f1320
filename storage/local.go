// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-a2a/credstore/pkg/logging"
	"github.com/go-a2a/credstore/types"
)

// LocalStore is the filesystem implementation of [types.BlobStore],
// bound to one directory.
type LocalStore struct {
	dir string
}

var _ types.BlobStore = (*LocalStore)(nil)

// NewLocalStore creates a [LocalStore] rooted at dir. The directory is
// created on the first write.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Address implements [types.BlobStore].
func (s *LocalStore) Address(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists implements [types.BlobStore].
func (s *LocalStore) Exists(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(s.Address(name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, s.wrap(ctx, "get", name, err)
	}
}

// Put implements [types.BlobStore]. The blob is written to a temporary
// file and renamed into place so a concurrent Get never observes a
// partial write.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return s.wrap(ctx, "put", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return s.wrap(ctx, "put", name, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return s.wrap(ctx, "put", name, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return s.wrap(ctx, "put", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return s.wrap(ctx, "put", name, err)
	}

	if err := os.Rename(tmp.Name(), s.Address(name)); err != nil {
		os.Remove(tmp.Name())
		return s.wrap(ctx, "put", name, err)
	}
	return nil
}

// Get implements [types.BlobStore].
func (s *LocalStore) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.Address(name))
	if err != nil {
		return nil, s.wrap(ctx, "get", name, err)
	}
	return data, nil
}

// Delete implements [types.BlobStore]. Missing files are swallowed so
// delete stays idempotent, matching the object-store backend.
func (s *LocalStore) Delete(ctx context.Context, name string) error {
	err := os.Remove(s.Address(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return s.wrap(ctx, "delete", name, err)
	}
	return nil
}

// List implements [types.BlobStore]. A missing root directory lists as
// empty, not as an error.
func (s *LocalStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, s.wrap(ctx, "list", "", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), BlobSuffix) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func (s *LocalStore) wrap(ctx context.Context, op, name string, err error) error {
	resource := s.Address(name)
	if name == "" {
		resource = s.dir
	}

	serr := &types.StorageError{Op: op, Resource: resource, Cause: err}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		serr.Kind = types.ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		serr.Kind = types.ErrAccessDenied
		serr.Permission = localPermission(op)
		serr.Remedy = "fix ownership or mode of the storage directory"
	default:
		serr.Kind = types.ErrUnexpected
		logging.FromContext(ctx).ErrorContext(ctx, "unexpected storage failure",
			slog.String("op", op),
			slog.String("resource", resource),
			slog.Any("error", err),
		)
	}

	return serr
}

func localPermission(op string) string {
	switch op {
	case "put", "delete":
		return "write"
	case "list":
		return "read (directory)"
	default:
		return "read"
	}
}
