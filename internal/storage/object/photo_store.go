// Package object stores contest photos in S3-compatible object storage.
// Clients submit photos as base64 data URLs; the store decodes them, uploads
// the bytes and hands back a public URL that goes on the participant record.
package object

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gravadigital/galawall-api/internal/config"
	"github.com/gravadigital/galawall-api/internal/logger"
)

// PhotoStore uploads participant photos to an S3-compatible bucket.
type PhotoStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	log       *log.Logger
}

// NewPhotoStore creates a photo store from object storage configuration.
// Returns (nil, nil) when no endpoint is configured, which disables uploads.
func NewPhotoStore(cfg *config.Config) (*PhotoStore, error) {
	if cfg.Object.Endpoint == "" {
		return nil, nil
	}

	client, err := minio.New(cfg.Object.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Object.AccessKey, cfg.Object.SecretKey, ""),
		Secure: cfg.Object.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	publicURL := cfg.Object.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.Object.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Object.Endpoint, cfg.Object.Bucket)
	}

	return &PhotoStore{
		client:    client,
		bucket:    cfg.Object.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       logger.Store("photos"),
	}, nil
}

// EnsureBucket creates the photo bucket if it does not exist.
func (s *PhotoStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	s.log.Info("photo bucket created", "bucket", s.bucket)
	return nil
}

// UploadDataURL decodes a base64 data URL and uploads it, returning the
// public URL of the stored photo.
func (s *PhotoStore) UploadDataURL(ctx context.Context, dataURL string) (string, error) {
	contentType, data, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("photos/%d_%04d%s", time.Now().UnixMilli(), rand.Intn(10000), extensionFor(contentType))

	s.log.Debug("uploading photo", "object", objectName, "size", len(data), "content_type", contentType)

	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.log.Error("failed to upload photo", "object", objectName, "error", err)
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	url := s.publicURL + "/" + objectName
	s.log.Info("photo uploaded", "object", objectName, "url", url)
	return url, nil
}

// decodeDataURL splits "data:<type>;base64,<payload>" into content type and
// raw bytes.
func decodeDataURL(dataURL string) (string, []byte, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return "", nil, fmt.Errorf("photo is not a data URL")
	}

	meta, payload, found := strings.Cut(dataURL[len("data:"):], ",")
	if !found {
		return "", nil, fmt.Errorf("malformed data URL")
	}

	contentType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return "", nil, fmt.Errorf("unsupported data URL encoding: %s", encoding)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode photo payload: %w", err)
	}

	return contentType, data, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}
