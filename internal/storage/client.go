// Package storage wraps MinIO object storage for lead photo objects.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DownloadURLTTL bounds how long a shared photo link stays valid.
const DownloadURLTTL = 15 * time.Minute

// ErrStorageDisabled is returned by write operations when no object
// storage is configured.
var ErrStorageDisabled = errors.New("object storage not configured")

// Config is the subset of application config the client needs.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketLeadPhotos() string
	IsMinIOEnabled() bool
}

// PhotoStore holds lead photo objects in a single bucket.
type PhotoStore struct {
	client *minio.Client
	bucket string
}

// NewPhotoStore creates the MinIO-backed photo store. Returns nil when the
// integration is not configured; callers treat a nil store as "no stored
// objects to manage".
func NewPhotoStore(cfg Config) (*PhotoStore, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, nil
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &PhotoStore{
		client: client,
		bucket: cfg.GetMinioBucketLeadPhotos(),
	}, nil
}

// EnsureBucketExists creates the photo bucket if it doesn't exist.
func (s *PhotoStore) EnsureBucketExists(ctx context.Context) error {
	if s == nil {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// UploadObject stores a photo under {leadID}/{random}_{fileName} and
// returns the object key.
func (s *PhotoStore) UploadObject(ctx context.Context, leadID uuid.UUID, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	if s == nil {
		return "", ErrStorageDisabled
	}

	objectKey := fmt.Sprintf("%s/%s_%s", leadID, uuid.New(), fileName)
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload object %s: %w", objectKey, err)
	}
	return objectKey, nil
}

// DownloadURL returns a presigned, short-lived link to a stored photo.
func (s *PhotoStore) DownloadURL(ctx context.Context, objectKey string) (string, error) {
	if s == nil {
		return "", ErrStorageDisabled
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, DownloadURLTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", objectKey, err)
	}
	return presigned.String(), nil
}

// RemoveObject deletes one stored photo object. Used by the deletion
// workflow's hard-delete cascade.
func (s *PhotoStore) RemoveObject(ctx context.Context, objectKey string) error {
	if s == nil {
		return nil
	}
	return s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}
