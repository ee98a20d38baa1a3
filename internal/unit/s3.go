package unit

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds the connection settings for an S3-compatible object store.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// S3Loader fetches units from sources of the form "s3://bucket/key".
type S3Loader struct {
	client *minio.Client
}

// NewS3Loader creates a loader backed by a minio client.
func NewS3Loader(cfg S3Config) (*S3Loader, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	opts := &minio.Options{
		Secure: cfg.UseSSL,
		Region: region,
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		opts.Creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}
	client, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Loader{client: client}, nil
}

// Load downloads the object named by source.
func (l *S3Loader) Load(ctx context.Context, source string) ([]byte, error) {
	bucket, key, err := ParseS3Source(source)
	if err != nil {
		return nil, err
	}
	obj, err := l.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// ParseS3Source splits "s3://bucket/key" into its bucket and key.
func ParseS3Source(source string) (bucket, key string, err error) {
	scheme, rest, ok := splitScheme(source)
	if !ok || scheme != "s3" {
		return "", "", fmt.Errorf("not an s3 source: '%s'", source)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 source must look like s3://bucket/key, got '%s'", source)
	}
	return bucket, key, nil
}
