// internal/services/storage_service.go
package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/craftkala/craftkala-backend/internal/config"
)

// DocumentStore writes an uploaded document and returns nothing but an
// error; the caller owns the key. Implementations: S3 and a local-disk
// fallback for development.
type DocumentStore interface {
	Put(key string, data []byte, contentType string) error
}

type S3DocumentStore struct {
	client *s3.S3
	bucket string
}

func NewS3DocumentStore(cfg config.AWSConfig) (*S3DocumentStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3DocumentStore{
		client: s3.New(sess),
		bucket: cfg.S3Bucket,
	}, nil
}

func (s *S3DocumentStore) Put(key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	return err
}

// LocalDocumentStore keeps documents under a directory on disk. Used when
// no AWS credentials are configured.
type LocalDocumentStore struct {
	baseDir string
}

func NewLocalDocumentStore(baseDir string) *LocalDocumentStore {
	return &LocalDocumentStore{baseDir: baseDir}
}

func (s *LocalDocumentStore) Put(key string, data []byte, contentType string) error {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// StorageService turns the data-URL payloads of the intake form into
// stored documents with stable references.
type StorageService struct {
	store DocumentStore
}

func NewStorageService(cfg config.AWSConfig) *StorageService {
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		s3Store, err := NewS3DocumentStore(cfg)
		if err == nil {
			return &StorageService{store: s3Store}
		}
		logrus.WithError(err).Warn("S3 unavailable, falling back to local document store")
	}
	return &StorageService{store: NewLocalDocumentStore("./uploads")}
}

func NewStorageServiceWithStore(store DocumentStore) *StorageService {
	return &StorageService{store: store}
}

var extensionByContentType = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
	"video/mp4":       ".mp4",
}

// StoreDataURL decodes a "data:<type>;base64,<payload>" document and writes
// it under the given prefix. The returned reference is the storage key,
// stable across the application's lifetime.
func (s *StorageService) StoreDataURL(prefix, name, dataURL string) (string, error) {
	contentType, data, err := decodeDataURL(dataURL)
	if err != nil {
		return "", &DocumentStorageError{Ref: name, Err: err}
	}

	ext := extensionByContentType[contentType]
	if ext == "" {
		ext = ".bin"
	}
	key := fmt.Sprintf("%s/%s-%s%s", prefix, uuid.New().String(), name, ext)

	if err := s.store.Put(key, data, contentType); err != nil {
		logrus.WithFields(logrus.Fields{
			"key":   key,
			"error": err,
		}).Error("Failed to store document")
		return "", &DocumentStorageError{Ref: name, Err: err}
	}
	return key, nil
}

func decodeDataURL(dataURL string) (contentType string, data []byte, err error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return "", nil, fmt.Errorf("not a data URL")
	}

	rest := strings.TrimPrefix(dataURL, "data:")
	idx := strings.Index(rest, ",")
	if idx < 0 {
		return "", nil, fmt.Errorf("malformed data URL")
	}

	meta := rest[:idx]
	payload := rest[idx+1:]

	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("only base64 data URLs are supported")
	}
	contentType = strings.TrimSuffix(meta, ";base64")

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("empty document payload")
	}
	return contentType, data, nil
}
