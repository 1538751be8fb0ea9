package scheduler

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Destination writes backups to a single object key. Credentials come
// from the default AWS chain (env, shared config, instance role).
type S3Destination struct {
	client *s3.Client
	bucket string
	key    string
}

// S3Options configures the destination. A custom Endpoint switches to
// path-style addressing for S3-compatible stores.
type S3Options struct {
	Bucket   string
	Key      string
	Region   string
	Endpoint string
}

// NewS3Destination loads AWS credentials from the default chain. A custom
// endpoint switches to path-style addressing for S3-compatible stores.
func NewS3Destination(ctx context.Context, opts S3Options) (*S3Destination, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if opts.Key == "" {
		opts.Key = "linkvault/backup.json"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Destination{client: client, bucket: opts.Bucket, key: opts.Key}, nil
}

// Write replaces the backup object with data.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	return err
}

func (d *S3Destination) String() string {
	return "s3://" + d.bucket + "/" + d.key
}
