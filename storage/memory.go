// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/go-a2a/credstore/types"
)

// MemoryStore is an in-memory implementation of [types.BlobStore] for
// tests and embedded single-process use. It is not selected by any
// storage root; construct it directly.
type MemoryStore struct {
	blobs map[string][]byte
	mu    sync.Mutex
}

var _ types.BlobStore = (*MemoryStore)(nil)

// NewMemoryStore creates a new instance of [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

// Address implements [types.BlobStore].
func (s *MemoryStore) Address(name string) string {
	return "memory://" + name
}

// Exists implements [types.BlobStore].
func (s *MemoryStore) Exists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.blobs[name]
	return ok, nil
}

// Put implements [types.BlobStore].
func (s *MemoryStore) Put(ctx context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[name] = slices.Clone(data)
	return nil
}

// Get implements [types.BlobStore].
func (s *MemoryStore) Get(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.blobs[name]
	if !ok {
		return nil, &types.StorageError{Op: "get", Resource: s.Address(name), Kind: types.ErrNotFound}
	}
	return slices.Clone(data), nil
}

// Delete implements [types.BlobStore].
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, name)
	return nil
}

// List implements [types.BlobStore].
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var names []string
	for name := range s.blobs {
		if strings.HasSuffix(name, BlobSuffix) {
			names = append(names, name)
		}
	}
	return names, nil
}
