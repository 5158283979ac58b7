// Package storage keeps uploaded photos in S3 and hands out URLs the face
// analysis API can fetch.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/insultr/internal/logging"
)

const (
	keyPrefix   = "images/"
	keySuffix   = ".png"
	contentType = "image/png"

	maxFetchSize = 32 << 20
)

// NewImageKey returns a fresh object key of the form images/<UUID>.png.
func NewImageKey() string {
	return keyPrefix + strings.ToUpper(uuid.NewString()) + keySuffix
}

// S3Config configures an S3Store.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL, when set, replaces presigned URLs with
	// PublicBaseURL + "/" + key.
	PublicBaseURL string
	URLTTL        time.Duration
}

// S3Store uploads images to a bucket and fetches them back by URL.
type S3Store struct {
	client *s3.S3
	http   *http.Client
	cfg    S3Config
	logger *zap.Logger
}

// NewS3Store opens an AWS session for cfg. httpClient is shared by the SDK
// and Fetch; nil means http.DefaultClient.
func NewS3Store(cfg S3Config, httpClient *http.Client, logger *zap.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	awsCfg := &aws.Config{
		Region:     aws.String(cfg.Region),
		HTTPClient: httpClient,
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, logging.NewOperationError("storage.new_session", "", err)
	}

	return &S3Store{
		client: s3.New(sess),
		http:   httpClient,
		cfg:    cfg,
		logger: logger.Named("storage"),
	}, nil
}

// Upload stores data under a new key and returns a URL for it.
func (s *S3Store) Upload(ctx context.Context, data []byte) (string, error) {
	key := NewImageKey()
	uploader := s3manager.NewUploaderWithClient(s.client)

	_, err := uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error("upload failed", zap.String("key", key), zap.Error(err))
		return "", logging.NewOperationError("storage.upload", "", err)
	}

	url, err := s.downloadURL(key)
	if err != nil {
		s.logger.Error("failed to build download url", zap.String("key", key), zap.Error(err))
		return "", logging.NewOperationError("storage.download_url", "", err)
	}

	s.logger.Info("image uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return url, nil
}

func (s *S3Store) downloadURL(key string) (string, error) {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key, nil
	}
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	return req.Presign(s.cfg.URLTTL)
}

// Fetch downloads the object behind a URL returned by Upload.
func (s *S3Store) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, logging.NewOperationError("storage.fetch", "", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, logging.NewOperationError("storage.fetch", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, logging.NewOperationError("storage.fetch", "", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return nil, logging.NewOperationError("storage.fetch", "", err)
	}
	return data, nil
}
