package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of the S3 client the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config describes where backups are uploaded.
type S3Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string // optional, for S3-compatible stores
	AccessKey string
	SecretKey string
}

// S3Uploader copies backup files into a bucket.
type S3Uploader struct {
	client ObjectPutter
	bucket string
	prefix string
}

// NewS3Uploader builds an uploader backed by a real S3 client. Static
// credentials are used when both keys are set.
func NewS3Uploader(cfg S3Config) *S3Uploader {
	opts := s3.Options{
		Region: cfg.Region,
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return NewS3UploaderWithClient(s3.New(opts), cfg.Bucket, cfg.Prefix)
}

// NewS3UploaderWithClient builds an uploader around an existing client.
func NewS3UploaderWithClient(client ObjectPutter, bucket, prefix string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for a backup file taken at the given time:
// <prefix><UTC timestamp>-<file name>.
func (u *S3Uploader) Key(path string, at time.Time) string {
	return u.prefix + at.UTC().Format("20060102T150405Z") + "-" + filepath.Base(path)
}

// Upload puts the file at path into the bucket under key and returns the
// s3:// location.
func (u *S3Uploader) Upload(ctx context.Context, path, key string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open backup: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat backup: %w", err)
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String("application/vnd.sqlite3"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload backup to s3://%s/%s: %w", u.bucket, key, err)
	}

	return "s3://" + u.bucket + "/" + strings.TrimPrefix(key, "/"), nil
}
