package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const objectURLScheme = "s3://"

// S3ClientConfig holds configuration for S3Client
type S3ClientConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UsePathStyle    bool
	URLExpiry       time.Duration
}

// S3Client presigns read URLs for media thumbnails held in S3-compatible
// storage. The media hub owns the objects; this client never writes.
type S3Client struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	urlExpiry     time.Duration
}

// NewS3Client creates a new S3Client with the given configuration
func NewS3Client(ctx context.Context, cfg S3ClientConfig) (*S3Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}

	return &S3Client{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		urlExpiry:     expiry,
	}, nil
}

// ParseObjectURL splits an s3://bucket/key reference. The bucket may be
// empty (s3:///key) to mean the configured default. ok is false for anything
// that is not an object reference, including plain https URLs.
func ParseObjectURL(raw string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(raw, objectURLScheme) {
		return "", "", false
	}
	rest := strings.TrimPrefix(raw, objectURLScheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// PresignURL turns an s3://bucket/key reference into a time-limited https
// URL. Any other URL is returned unchanged.
func (c *S3Client) PresignURL(ctx context.Context, raw string) (string, error) {
	bucket, key, ok := ParseObjectURL(raw)
	if !ok {
		return raw, nil
	}
	if bucket == "" {
		bucket = c.bucket
	}

	presignedReq, err := c.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = c.urlExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", raw, err)
	}

	return presignedReq.URL, nil
}
