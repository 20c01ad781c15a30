// Package s3store serves bucket objects from S3 or any S3-compatible service.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/sagarc03/bucketgate"
)

// API is the subset of the S3 client used by Store.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Options configures the S3 client built by New.
type Options struct {
	Region string
	// Endpoint overrides the service endpoint, e.g. a local MinIO.
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	MaxAttempts  int
}

// Store implements bucketgate.ObjectStore on top of an S3 client.
type Store struct {
	api API
}

var _ bucketgate.ObjectStore = (*Store)(nil)

// NewStore wraps an existing S3 client.
func NewStore(api API) *Store {
	return &Store{api: api}
}

// New loads the default AWS configuration, applies opts on top of it and
// returns a Store backed by the resulting client.
func New(ctx context.Context, opts Options) (*Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" || opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	if opts.MaxAttempts > 0 {
		loadOpts = append(loadOpts, awsconfig.WithRetryMaxAttempts(opts.MaxAttempts))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return NewStore(client), nil
}

// GetObject fetches bucket/key. Missing keys map to NotFound, every other
// failure to TransientError.
func (s *Store) GetObject(ctx context.Context, bucket, key string) bucketgate.FetchOutcome {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if IsNotFound(err) {
			return bucketgate.NotFound()
		}
		return bucketgate.TransientError(fmt.Errorf("get object %s/%s: %w", bucket, key, err))
	}

	if out.Body == nil {
		return bucketgate.Found([]byte{}, aws.ToString(out.ContentType))
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return bucketgate.TransientError(fmt.Errorf("read object %s/%s: %w", bucket, key, err))
	}

	return bucketgate.Found(body, aws.ToString(out.ContentType))
}

// IsNotFound reports whether err is S3's answer for a missing key.
func IsNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	return false
}
