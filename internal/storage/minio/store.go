// Package minio implements the product image object store against any
// S3-compatible service (MinIO, AWS S3).
package minio

import (
	"context"
	"io"
	"strings"

	"github.com/go-faster/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/vailshop/catalog-admin/internal/domain/product"
)

var _ product.ObjectStore = (*Store)(nil)

// Config holds the object store connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// Bucket is the single fixed bucket holding uploaded product images.
	Bucket string
	// PublicBaseURL is the base for public object links (a CDN or the
	// store endpoint itself). Defaults to the endpoint when empty.
	PublicBaseURL string
}

// Store uploads blobs into one fixed bucket and derives public URLs for
// stored keys.
type Store struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// New connects to the object store and ensures the bucket exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create object store client")
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrapf(err, "check bucket %q", cfg.Bucket)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrapf(err, "create bucket %q", cfg.Bucket)
		}
		// Product images are served to browsers straight from the bucket.
		if err := client.SetBucketPolicy(ctx, cfg.Bucket, publicReadPolicy(cfg.Bucket)); err != nil {
			return nil, errors.Wrapf(err, "set policy on bucket %q", cfg.Bucket)
		}
	}

	base := cfg.PublicBaseURL
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint
	}

	return &Store{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: strings.TrimSuffix(base, "/"),
	}, nil
}

func publicReadPolicy(bucket string) string {
	return `{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Principal": {"AWS": ["*"]},
		"Action": ["s3:GetObject"],
		"Resource": ["arn:aws:s3:::` + bucket + `/*"]
	}]
}`
}

// Upload stores the blob under key and returns the key actually stored.
func (s *Store) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Wrapf(err, "put object %q", key)
	}
	return info.Key, nil
}

// PublicURL derives the browser-accessible URL for a stored key.
func (s *Store) PublicURL(key string) string {
	return s.publicBase + "/" + s.bucket + "/" + key
}

// Ping probes the bucket, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}
