// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"cloud.google.com/go/auth/credentials"
	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/go-a2a/credstore/pkg/logging"
	"github.com/go-a2a/credstore/types"
)

// GCSStore is the Google Cloud Storage implementation of
// [types.BlobStore], bound to one bucket and key prefix.
//
// Writes are unconditional: when two instances refresh the same identity
// concurrently the later Put wins. See the package doc.
type GCSStore struct {
	bucket     *storage.BucketHandle
	bucketName string
	prefix     string
	kmsKey     string
}

var _ types.BlobStore = (*GCSStore)(nil)

// The backend client is process-wide: constructed lazily on first use,
// reused by every GCSStore, and never torn down during normal operation.
var (
	clientMu     sync.Mutex
	sharedClient *storage.Client
)

const credentialsRemedy = "run `gcloud auth application-default login` or set GOOGLE_APPLICATION_CREDENTIALS to a service account key file"

func gcsClient(ctx context.Context, root string, clientOpts []option.ClientOption) (*storage.Client, error) {
	clientMu.Lock()
	defer clientMu.Unlock()

	if sharedClient != nil {
		return sharedClient, nil
	}

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes: []string{storage.ScopeReadWrite},
	})
	if err != nil {
		return nil, &types.StorageError{
			Op:       "connect",
			Resource: root,
			Kind:     types.ErrCredentialsUnavailable,
			Remedy:   credentialsRemedy,
			Cause:    err,
		}
	}

	opts := append([]option.ClientOption{option.WithAuthCredentials(creds)}, clientOpts...)
	client, err := storage.NewGRPCClient(ctx, opts...)
	if err != nil {
		return nil, &types.StorageError{
			Op:       "connect",
			Resource: root,
			Kind:     types.ErrUnexpected,
			Cause:    err,
		}
	}

	sharedClient = client
	return sharedClient, nil
}

func newGCSStore(ctx context.Context, root string, cfg *config) (*GCSStore, error) {
	bucketName, prefix, err := parseRemoteRoot(root)
	if err != nil {
		return nil, err
	}

	client, err := gcsClient(ctx, root, cfg.clientOpts)
	if err != nil {
		return nil, err
	}

	return &GCSStore{
		bucket:     client.Bucket(bucketName),
		bucketName: bucketName,
		prefix:     prefix,
		kmsKey:     cfg.kmsKey,
	}, nil
}

// objectName resolves the blob name to the full object key under the
// configured prefix.
func (s *GCSStore) objectName(name string) string {
	return joinPrefix(s.prefix, name)
}

// Address implements [types.BlobStore].
func (s *GCSStore) Address(name string) string {
	return Scheme + s.bucketName + "/" + s.objectName(name)
}

// Exists implements [types.BlobStore].
func (s *GCSStore) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.bucket.Object(s.objectName(name)).Attrs(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrObjectNotExist):
		return false, nil
	default:
		return false, s.wrap(ctx, "get", name, err)
	}
}

// Put implements [types.BlobStore]. The object is written with a JSON
// content type and, when configured, the Cloud KMS encryption key.
func (s *GCSStore) Put(ctx context.Context, name string, data []byte) error {
	w := s.bucket.Object(s.objectName(name)).NewWriter(ctx)
	w.ContentType = "application/json"
	w.KMSKeyName = s.kmsKey

	if _, err := w.Write(data); err != nil {
		w.Close()
		return s.wrap(ctx, "put", name, err)
	}
	if err := w.Close(); err != nil {
		return s.wrap(ctx, "put", name, err)
	}
	return nil
}

// Get implements [types.BlobStore].
func (s *GCSStore) Get(ctx context.Context, name string) ([]byte, error) {
	r, err := s.bucket.Object(s.objectName(name)).NewReader(ctx)
	if err != nil {
		return nil, s.wrap(ctx, "get", name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, s.wrap(ctx, "get", name, err)
	}
	return data, nil
}

// Delete implements [types.BlobStore]. Object deletes are idempotent;
// a missing object is not an error.
func (s *GCSStore) Delete(ctx context.Context, name string) error {
	err := s.bucket.Object(s.objectName(name)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return s.wrap(ctx, "delete", name, err)
	}
	return nil
}

// List implements [types.BlobStore]. The iterator pages through all
// matching objects; only credential blobs are returned, as names
// relative to the prefix.
func (s *GCSStore) List(ctx context.Context) ([]string, error) {
	query := &storage.Query{}
	if s.prefix != "" {
		query.Prefix = s.prefix + "/"
	}

	var names []string
	it := s.bucket.Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, s.wrap(ctx, "list", "", err)
		}

		name := strings.TrimPrefix(attrs.Name, query.Prefix)
		if strings.HasSuffix(name, BlobSuffix) && !strings.Contains(name, "/") {
			names = append(names, name)
		}
	}

	return names, nil
}

// permissions returns the minimal IAM capability for an operation, for
// operator-facing access errors.
func permission(op string) string {
	switch op {
	case "get":
		return "storage.objects.get"
	case "put":
		return "storage.objects.create"
	case "delete":
		return "storage.objects.delete"
	case "list":
		return "storage.objects.list"
	default:
		return ""
	}
}

// wrap classifies a backend error into the shared taxonomy and attaches
// the concrete resource. Unclassifiable errors are logged with full
// context before propagating.
func (s *GCSStore) wrap(ctx context.Context, op, name string, err error) error {
	resource := s.Address(name)
	if name == "" {
		resource = Scheme + s.bucketName + "/" + s.prefix
	}

	serr := &types.StorageError{Op: op, Resource: resource, Cause: err}

	var apiErr *googleapi.Error
	switch {
	case errors.Is(err, storage.ErrObjectNotExist):
		serr.Kind = types.ErrNotFound
	case errors.Is(err, storage.ErrBucketNotExist):
		serr.Kind = types.ErrBucketNotFound
		serr.Remedy = "create the bucket or correct the configured storage root"
	case errors.As(err, &apiErr):
		switch {
		case apiErr.Code == http.StatusForbidden || apiErr.Code == http.StatusUnauthorized:
			serr.Kind = types.ErrAccessDenied
			serr.Permission = permission(op)
			serr.Remedy = "grant the service account roles/storage.objectAdmin on the bucket"
		case apiErr.Code == http.StatusNotFound:
			serr.Kind = types.ErrNotFound
		case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError:
			serr.Kind = types.ErrTransient
		default:
			serr.Kind = types.ErrUnexpected
		}
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		serr.Kind = types.ErrTransient
	default:
		serr.Kind = types.ErrUnexpected
	}

	if errors.Is(serr.Kind, types.ErrUnexpected) {
		logging.FromContext(ctx).ErrorContext(ctx, "unexpected storage failure",
			slog.String("op", op),
			slog.String("resource", resource),
			slog.Any("error", err),
		)
	}

	return serr
}
