package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appconfig "github.com/vukanihub/vukani-backend/config"
)

// S3Storage is the signed-URL gateway over an S3-compatible bucket. It only
// ever hands out time-limited capability URLs; object bytes never pass
// through this process.
type S3Storage struct {
	client         *s3.Client
	presign        *s3.PresignClient
	bucket         string
	uploadTTL      time.Duration
	downloadTTL    time.Duration
	requestTimeout time.Duration
}

func NewS3Storage(cfg *appconfig.S3Config) *S3Storage {
	var awsCfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		// Default credential chain (environment variables, ~/.aws/credentials, IAM role, etc.)
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.Region),
		)
		if err != nil {
			awsCfg = aws.Config{
				Region: cfg.Region,
			}
		}
	}

	client := s3.NewFromConfig(awsCfg)

	return &S3Storage{
		client:         client,
		presign:        s3.NewPresignClient(client),
		bucket:         cfg.Bucket,
		uploadTTL:      cfg.UploadTTLOrDefault(),
		downloadTTL:    cfg.DownloadTTLOrDefault(),
		requestTimeout: cfg.TimeoutOrDefault(),
	}
}

// PresignUpload returns a short-lived signed PUT URL for the given key.
func (s *S3Storage) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	presignedReq, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.uploadTTL))
	if err != nil {
		return "", fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return presignedReq.URL, nil
}

// PresignDownload returns a short-lived signed GET URL for the given key.
// URLs are regenerated on every call and never cached server-side.
func (s *S3Storage) PresignDownload(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	presignedReq, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.downloadTTL))
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}

	return presignedReq.URL, nil
}

// DeleteObject removes the backing object for the given key.
func (s *S3Storage) DeleteObject(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}
