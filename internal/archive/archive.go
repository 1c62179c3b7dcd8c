// Package archive stores generated exports in S3-compatible object storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archiver keeps a copy of an export and returns the object key it was stored under.
type Archiver interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Config holds the object storage connection settings.
type Config struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	Prefix    string `koanf:"prefix"`
	UseSSL    bool   `koanf:"use_ssl"`
}

// Enabled reports whether enough is configured to connect.
func (c Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// MinioArchive writes objects with minio-go.
type MinioArchive struct {
	client *minio.Client
	bucket string
	prefix string
}

// New connects to the endpoint. The bucket is created on first use by EnsureBucket.
func New(cfg Config) (*MinioArchive, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}
	return &MinioArchive{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (a *MinioArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", a.bucket, err)
	}
	slog.Info("created archive bucket", slog.String("bucket", a.bucket))
	return nil
}

func (a *MinioArchive) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if a.prefix != "" {
		key = path.Join(a.prefix, key)
	}
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", key, err)
	}
	return key, nil
}

// Key builds the object key for an export: <hotel>/<kind>/<date>/<name>.
func Key(hotelID, kind, name string, at time.Time) string {
	return path.Join(hotelID, kind, at.UTC().Format("2006/01/02"), name)
}
