package storage

//go:generate mockgen -source=storage.go -destination=../../internal/mock/storage_mock.go -package=mock

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ObjectStorage stores uploaded files and returns a URL clients can fetch them from.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type Config struct {
	Type      string // local, s3
	BasePath  string // local
	BaseURL   string // public URL base for local files
	Bucket    string
	Region    string
	Endpoint  string // custom S3 endpoint (MinIO, R2)
	AccessKey string
	SecretKey string
	PublicURL string // public URL base for S3 objects
}

func New(ctx context.Context, cfg Config) (ObjectStorage, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
