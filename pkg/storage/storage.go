// Package storage stores uploaded files in S3-compatible object
// storage. Keys are ULIDs grouped under a caller-supplied prefix, so
// listings sort by upload time.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrInvalidConfig = errors.New("storage: invalid config")
	ErrUploadFailed  = errors.New("storage: upload failed")
	ErrNotFound      = errors.New("storage: object not found")
	ErrDeleteFailed  = errors.New("storage: delete failed")
	ErrSignFailed    = errors.New("storage: presign failed")
)

// DefaultURLExpiry bounds how long presigned download links stay valid.
const DefaultURLExpiry = 15 * time.Minute

// Object describes a stored file.
type Object struct {
	Key         string
	ContentType string
	Size        int64
}

// Storage is the file store handed to endpoints. Implementations must
// be safe for concurrent use.
type Storage interface {
	// Put uploads the reader's content under a generated key and
	// returns the stored object's metadata.
	Put(ctx context.Context, r io.Reader, size int64, prefix, contentType string) (*Object, error)

	// Get streams an object; the caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// SignedURL returns a presigned download link valid for expiry;
	// zero expiry means DefaultURLExpiry.
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Config holds S3 connection settings, populated from the environment
// via pkg/config. Endpoint and PathStyle cover MinIO and other
// S3-compatible services.
type Config struct {
	Bucket    string `env:"S3_BUCKET,required"`
	AccessKey string `env:"S3_ACCESS_KEY,required"`
	SecretKey string `env:"S3_SECRET_KEY,required"`
	Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint  string `env:"S3_ENDPOINT"`
	PathStyle bool   `env:"S3_PATH_STYLE" envDefault:"false"`
}

func (c Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}
