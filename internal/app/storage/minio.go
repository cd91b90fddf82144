package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/notification"
	"go.uber.org/zap"

	"transcribe-beautifier/internal/app/errors"
	"transcribe-beautifier/internal/config"
)

// MinioStore implements ObjectStore on any S3-compatible endpoint.
type MinioStore struct {
	client     *minio.Client
	uriStyle   string
	presignTTL time.Duration
	logger     *zap.Logger
}

// NewMinioStore creates a store from storage configuration. Static keys are
// used when configured, otherwise the AWS environment, shared credentials
// file and instance role are tried in turn.
func NewMinioStore(cfg config.StorageConfig, logger *zap.Logger) (*MinioStore, error) {
	var creds *credentials.Credentials
	if cfg.AccessKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken)
	} else {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.FileAWSCredentials{},
			&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
		})
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: !cfg.Insecure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &MinioStore{
		client:     client,
		uriStyle:   cfg.MediaURI,
		presignTTL: cfg.PresignTTL,
		logger:     logger,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	s.logger.Info("created bucket", zap.String("bucket", bucket))
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, bucket, key, localPath string) error {
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := s.client.FPutObject(ctx, bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-name": filepath.Base(localPath),
			"uploaded-at":   time.Now().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", localPath, err)
	}

	s.logger.Debug("uploaded object",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int64("size", info.Size))
	return nil
}

func (s *MinioStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.translate(err, bucket, key)
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, s.translate(err, bucket, key)
	}
	return obj, nil
}

func (s *MinioStore) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *MinioStore) Delete(ctx context.Context, bucket, key string) error {
	if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *MinioStore) MediaURI(ctx context.Context, bucket, key string) (string, error) {
	if s.uriStyle != config.MediaURIPresigned {
		return ObjectRef{Bucket: bucket, Key: key}.String(), nil
	}
	u, err := s.client.PresignedGetObject(ctx, bucket, key, s.presignTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}

// Listen subscribes to object-created notifications. It works against MinIO
// servers; AWS S3 delivers events through the webhook instead.
func (s *MinioStore) Listen(ctx context.Context, bucket, prefix, suffix string) <-chan Notification {
	out := make(chan Notification)
	events := []string{string(notification.ObjectCreatedAll)}

	go func() {
		defer close(out)
		for info := range s.client.ListenBucketNotification(ctx, bucket, prefix, suffix, events) {
			if info.Err != nil {
				select {
				case out <- Notification{Err: info.Err}:
				case <-ctx.Done():
					return
				}
				continue
			}
			for _, record := range info.Records {
				key, err := url.QueryUnescape(record.S3.Object.Key)
				if err != nil {
					key = record.S3.Object.Key
				}
				n := Notification{Ref: ObjectRef{Bucket: record.S3.Bucket.Name, Key: key}}
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

func (s *MinioStore) translate(err error, bucket, key string) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return errors.NotFound(bucket, key)
	}
	return fmt.Errorf("failed to read s3://%s/%s: %w", bucket, key, err)
}
