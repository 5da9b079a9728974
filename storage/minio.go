package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"Hummify/config"
	"Hummify/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectRef identifies an uploaded object together with its retrievable URL.
type ObjectRef struct {
	ObjectID string
	URL      string
}

// ObjectStore is the blob store consumed by the conversion service and the
// reclamation sweeper. Delete is idempotent: removing an object that no
// longer exists is not an error.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, folder, ext string) (ObjectRef, error)
	Delete(ctx context.Context, objectID string) error
	URL(objectID string) string
}

// MinioStore implements ObjectStore backed by a MinIO bucket.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStore connects to MinIO, ensures the bucket exists and returns a
// ready-to-use store.
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("Created MinIO bucket", logger.String("bucket", cfg.MinioBucket))
	}

	return &MinioStore{
		client:    client,
		bucket:    cfg.MinioBucket,
		publicURL: strings.TrimRight(cfg.MinioPublicURL, "/"),
	}, nil
}

// Upload stores data under a fresh object id in the given folder and returns
// the object reference. The returned URL is immediately usable.
func (s *MinioStore) Upload(ctx context.Context, data []byte, folder, ext string) (ObjectRef, error) {
	objectID := fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.New().String(), ext)

	opts := minio.PutObjectOptions{ContentType: contentTypeForExt(ext)}
	_, err := s.client.PutObject(ctx, s.bucket, objectID, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return ObjectRef{}, fmt.Errorf("failed to upload object %s: %w", objectID, err)
	}

	logger.Debug("Uploaded object to MinIO",
		logger.String("objectId", objectID),
		logger.Int("bytes", len(data)))

	return ObjectRef{ObjectID: objectID, URL: s.URL(objectID)}, nil
}

// Delete removes an object. Deleting a nonexistent object succeeds, so the
// sweeper can safely retry items across runs.
func (s *MinioStore) Delete(ctx context.Context, objectID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectID, minio.RemoveObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("failed to delete object %s: %w", objectID, err)
	}
	return nil
}

// URL builds the public URL for an object id.
func (s *MinioStore) URL(objectID string) string {
	return s.publicURL + "/" + objectID
}

// BucketStats summarizes bucket usage per top-level folder.
type BucketStats struct {
	ObjectCount int64
	TotalBytes  int64
	ByFolder    map[string]int64
}

// Stats walks the bucket and aggregates object counts and sizes. Used by the
// minio maintenance command.
func (s *MinioStore) Stats(ctx context.Context, prefix string) (*BucketStats, error) {
	stats := &BucketStats{ByFolder: make(map[string]int64)}

	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		stats.ObjectCount++
		stats.TotalBytes += object.Size

		folder := "/"
		if idx := strings.Index(object.Key, "/"); idx > 0 {
			folder = object.Key[:idx]
		}
		stats.ByFolder[folder] += object.Size
	}
	return stats, nil
}

func contentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".webm":
		return "audio/webm"
	case ".ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}
