package storage

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	ferrors "github.com/sycltools/aspect-filter/internal/errors"
)

// S3Source reads objects addressed as s3://bucket/key.
type S3Source struct {
	client     *s3.Client
	maxRetries int
}

// S3Config holds configuration for the S3 source.
type S3Config struct {
	// Region is the AWS region to resolve buckets in.
	Region string
	// Endpoint is an optional custom endpoint (for MinIO, LocalStack, etc.).
	Endpoint string
	// UsePathStyle enables path-style addressing (required for MinIO).
	UsePathStyle bool
}

// NewS3Source creates an S3 source from the ambient AWS configuration.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCategoryIO, ferrors.CodeReadFailed,
			"can't load the AWS configuration", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3Source{
		client:     s3.NewFromConfig(awsCfg, s3Opts...),
		maxRetries: 3,
	}, nil
}

// NewS3SourceWithClient creates an S3 source with a pre-configured client.
func NewS3SourceWithClient(client *s3.Client) *S3Source {
	return &S3Source{client: client, maxRetries: 3}
}

// ReadFile fetches an s3://bucket/key object.
func (s *S3Source) ReadFile(ctx context.Context, path string) ([]byte, error) {
	bucket, key, err := splitS3Path(path)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = s.retryWithBackoff(ctx, func() error {
		resp, getErr := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if getErr != nil {
			return getErr
		}
		defer resp.Body.Close()

		data, getErr = io.ReadAll(resp.Body)
		return getErr
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ferrors.Wrap(ferrors.ErrCategoryIO, ferrors.CodeFileNotFound,
				"file '"+path+"' not found", err)
		}
		return nil, ferrors.Wrap(ferrors.ErrCategoryIO, ferrors.CodeReadFailed,
			"can't read "+path, err)
	}
	return data, nil
}

// splitS3Path splits s3://bucket/key into its bucket and key parts.
func splitS3Path(path string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(path, s3Scheme)
	slash := strings.IndexByte(rest, '/')
	if slash <= 0 || slash == len(rest)-1 {
		return "", "", ferrors.Newf(ferrors.ErrCategoryArgument, ferrors.CodeInvalidArgument,
			"%q is not of the form s3://bucket/key", path)
	}
	return rest[:slash], rest[slash+1:], nil
}

// retryWithBackoff retries transient fetch failures with exponential
// backoff. Not-found errors are terminal.
func (s *S3Source) retryWithBackoff(ctx context.Context, operation func() error) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			return nil
		}

		var noSuchKey *types.NoSuchKey
		if errors.As(lastErr, &noSuchKey) {
			return lastErr
		}

		if attempt < s.maxRetries {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * 100 * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}
