package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Storage struct {
	client *minio.Client
	bucket string
	log    logger.Logger
}

func NewS3Storage(ctx context.Context, cfg config.S3Config, log logger.Logger) (*S3Storage, error) {
	log = log.Named("S3Storage")
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, errExists := client.BucketExists(ctx, cfg.Bucket)
		if errExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", cfg.Bucket, err, errExists)
		}
		log.Infof("bucket %s already exists", cfg.Bucket)
	} else {
		log.Infof("bucket %s created", cfg.Bucket)
	}

	return &S3Storage{client: client, bucket: cfg.Bucket, log: log}, nil
}

func (s *S3Storage) Save(ctx context.Context, filename string, data []byte) (string, error) {
	objectKey := fmt.Sprintf("products/%s%s", uuid.NewString(), filepath.Ext(SanitizeFilename(filename)))

	info, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: http.DetectContentType(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}
	s.log.Debugf("uploaded %s/%s (%d bytes)", info.Bucket, info.Key, info.Size)

	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, objectKey), nil
}
