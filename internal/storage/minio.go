package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig contains MinIO connection settings
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	// Prefix is prepended to every screenshot key
	Prefix string
	// PresignExpiry, when positive, makes SaveScreenshot return a presigned
	// download URL instead of an s3:// URI
	PresignExpiry time.Duration
}

// MinIOStore stores artifacts in an S3 compatible bucket
type MinIOStore struct {
	client        *minio.Client
	bucketName    string
	prefix        string
	presignExpiry time.Duration
}

var _ ArtifactStore = (*MinIOStore)(nil)

// NewMinIOStore creates a new MinIO-backed store
func NewMinIOStore(cfg MinIOConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	return &MinIOStore{
		client:        client,
		bucketName:    cfg.BucketName,
		prefix:        cfg.Prefix,
		presignExpiry: cfg.PresignExpiry,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (m *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucketName)
	if err != nil {
		return fmt.Errorf("checking bucket existence: %w", err)
	}

	if !exists {
		err = m.client.MakeBucket(ctx, m.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
	}

	return nil
}

// SaveScreenshot uploads a PNG screenshot and returns its S3 URI, or a
// presigned URL when an expiry is configured
func (m *MinIOStore) SaveScreenshot(ctx context.Context, sessionID, name string, data []byte) (string, error) {
	key := ScreenshotKey(m.prefix, sessionID, name)
	uri, err := m.Put(ctx, key, data)
	if err != nil || m.presignExpiry <= 0 {
		return uri, err
	}
	return m.PresignedURL(ctx, key, m.presignExpiry)
}

// Put uploads data under key with a content type derived from the extension
func (m *MinIOStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType(key),
	})
	if err != nil {
		return "", fmt.Errorf("uploading object: %w", err)
	}

	// Return S3-style URI
	return fmt.Sprintf("s3://%s/%s", m.bucketName, key), nil
}

// PresignedURL returns a download URL valid for expiry
func (m *MinIOStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucketName, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("generating presigned URL: %w", err)
	}
	return u.String(), nil
}
