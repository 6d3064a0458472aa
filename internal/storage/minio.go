package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/myshagun/backend/internal/config"
	"github.com/myshagun/backend/pkg/logger"
	"go.uber.org/zap"
)

const publicReadPolicy = `{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Principal": {"AWS": ["*"]},
		"Action": ["s3:GetObject"],
		"Resource": ["arn:aws:s3:::%s/*"]
	}]
}`

// MinIOStore keeps photos in a public-read bucket.
type MinIOStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinIOStore connects and creates the bucket if it is missing.
func NewMinIOStore(ctx context.Context, cfg config.PhotoConfig) (*MinIOStore, error) {
	if strings.TrimSpace(cfg.MinIOEndpoint) == "" {
		return nil, errors.New("minio endpoint is empty")
	}

	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		if err := client.SetBucketPolicy(ctx, cfg.MinIOBucket, fmt.Sprintf(publicReadPolicy, cfg.MinIOBucket)); err != nil {
			logger.Log.Warn("Failed to set public read policy",
				zap.String("bucket", cfg.MinIOBucket),
				zap.Error(err),
			)
		}
		logger.Log.Info("MinIO bucket created", zap.String("bucket", cfg.MinIOBucket))
	}

	baseURL := cfg.MinIOBaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.MinIOUseSSL {
			scheme = "https"
		}
		baseURL = scheme + "://" + cfg.MinIOEndpoint
	}

	return &MinIOStore{
		client:  client,
		bucket:  cfg.MinIOBucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *MinIOStore) Save(ctx context.Context, userID string, r io.Reader, size int64) (string, error) {
	contentType, ext, body, err := sniff(r)
	if err != nil {
		return "", err
	}

	name := objectName(userID, ext)
	info, err := s.client.PutObject(ctx, s.bucket, name, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logger.Log.Error("MinIO upload failed",
			zap.String("object", name),
			zap.Int64("size", size),
			zap.Error(err),
		)
		return "", fmt.Errorf("upload photo: %w", err)
	}

	logger.Log.Debug("Photo stored in bucket",
		zap.String("user_id", userID),
		zap.String("object", name),
		zap.String("etag", info.ETag),
	)

	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, name), nil
}
