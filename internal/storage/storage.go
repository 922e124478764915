// Package storage keeps rendered affirmation audio in object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nikhilbhutani/listenloved/internal/config"
)

var (
	ErrNotFound      = errors.New("storage: object not found")
	ErrNotConfigured = errors.New("storage: backend not configured")
)

// Storage is a flat bucket/path object store. Audio is always proxied
// through the API, so backends never hand out public links.
type Storage interface {
	Upload(ctx context.Context, bucket, path string, data io.Reader, contentType string) error
	Download(ctx context.Context, bucket, path string) (io.ReadCloser, error)
	// Delete succeeds when the object is already gone.
	Delete(ctx context.Context, bucket, path string) error
}

// New builds the backend named by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case "", "supabase":
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return nil, fmt.Errorf("%w: SUPABASE_URL and SUPABASE_SERVICE_KEY are required", ErrNotConfigured)
		}
		return NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey), nil
	case "minio":
		if cfg.MinioEndpoint == "" || cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" {
			return nil, fmt.Errorf("%w: MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required", ErrNotConfigured)
		}
		return NewMinioStorage(ctx, MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.Bucket,
		})
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
