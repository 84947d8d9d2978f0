package photos

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fieldserve/fieldserve/internal/config"
)

const presignExpiry = 15 * time.Minute

// StoredPhoto describes an uploaded photo object.
type StoredPhoto struct {
	StorageKey string    `json:"storage_key"`
	Size       int64     `json:"size"`
	Checksum   string    `json:"checksum"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Storage persists ticket photos in object storage.
type Storage struct {
	client  *minio.Client
	bucket  string
	maxSize int64
}

// NewStorage connects to the configured object store.
func NewStorage(cfg *config.Config) (*Storage, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: false,
	})
	if err != nil {
		return nil, fmt.Errorf("photos: connect object store: %w", err)
	}

	return &Storage{
		client:  client,
		bucket:  cfg.MinioBucket,
		maxSize: cfg.MaxPhotoSize,
	}, nil
}

// Upload stores one photo under the ticket's key prefix and returns its
// storage key and checksum. Oversized uploads are rejected before any bytes
// reach the object store.
func (s *Storage) Upload(ctx context.Context, ticketID int64, reader io.Reader, size int64, filename string) (*StoredPhoto, error) {
	if size > s.maxSize {
		return nil, fmt.Errorf("photos: file exceeds %d byte limit", s.maxSize)
	}

	storageKey := fmt.Sprintf("tickets/%d/%s/%s%s", ticketID, time.Now().Format("2006/01/02"), uuid.New().String(), path.Ext(filename))

	hasher := sha256.New()
	teeReader := io.TeeReader(reader, hasher)

	if _, err := s.client.PutObject(ctx, s.bucket, storageKey, teeReader, size, minio.PutObjectOptions{}); err != nil {
		return nil, fmt.Errorf("photos: upload: %w", err)
	}

	return &StoredPhoto{
		StorageKey: storageKey,
		Size:       size,
		Checksum:   hex.EncodeToString(hasher.Sum(nil)),
		UploadedAt: time.Now(),
	}, nil
}

// PresignedURL returns a short-lived download link for a stored photo.
func (s *Storage) PresignedURL(ctx context.Context, storageKey string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, storageKey, presignExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("photos: presign: %w", err)
	}
	return u.String(), nil
}

// Delete removes a stored photo.
func (s *Storage) Delete(ctx context.Context, storageKey string) error {
	return s.client.RemoveObject(ctx, s.bucket, storageKey, minio.RemoveObjectOptions{})
}
