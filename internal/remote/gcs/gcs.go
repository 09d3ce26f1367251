// Package gcs stores expense image objects in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gstorage "google.golang.org/api/storage/v1"

	"expensesync/internal/remote"
)

const publicHost = "https://storage.googleapis.com"

var _ remote.ObjectStore = (*ObjectStore)(nil)

type ObjectStore struct {
	svc    *gstorage.Service
	bucket string
}

// New creates a store for bucket. credentialsFile is a service account JSON
// file; when empty, Application Default Credentials are used. Extra options
// are appended after the credential options.
func New(ctx context.Context, bucket, credentialsFile string, opts ...goption.ClientOption) (*ObjectStore, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("missing GCS bucket")
	}

	clientOpts := []goption.ClientOption{goption.WithScopes(gstorage.DevstorageReadWriteScope)}
	if credentialsFile != "" {
		slog.InfoContext(ctx, "Reading GCS credentials from file", "path", credentialsFile)
		credentialsJSON, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		clientOpts = append(clientOpts, goption.WithCredentialsJSON(credentialsJSON))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := gstorage.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create storage service: %w", err)
	}
	return &ObjectStore{svc: svc, bucket: bucket}, nil
}

func (s *ObjectStore) Upload(ctx context.Context, path string, r io.Reader, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	obj := &gstorage.Object{Name: path, Bucket: s.bucket, ContentType: contentType}
	if _, err := s.svc.Objects.Insert(s.bucket, obj).
		Media(r, googleapi.ContentType(contentType)).
		Context(ctx).
		Do(); err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	return s.PublicURL(path), nil
}

// Delete treats a missing object as already deleted.
func (s *ObjectStore) Delete(ctx context.Context, path string) error {
	err := s.svc.Objects.Delete(s.bucket, path).Context(ctx).Do()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == 404 {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete object %s: %w", path, err)
	}
	return nil
}

func (s *ObjectStore) PublicURL(path string) string {
	return publicHost + "/" + s.bucket + "/" + strings.TrimLeft(path, "/")
}
