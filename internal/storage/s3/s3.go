// Package s3 implements a Store backed by an Amazon S3 bucket, which is
// where SES receipt rules archive inbound mail.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/shineum/ses-redirect/internal/storage"
)

// ObjectAPI is the subset of the S3 client used by Store.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
}

// StoreConfig holds the configuration for creating a Store.
type StoreConfig struct {
	Bucket string
	// Region defaults to the region of the running function.
	Region string
}

// Store reads and deletes archived messages in a single bucket.
type Store struct {
	bucket string
	client ObjectAPI
}

// New creates a Store using the default AWS credential chain.
func New(ctx context.Context, cfg StoreConfig) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Store{bucket: cfg.Bucket, client: awss3.NewFromConfig(awsCfg)}, nil
}

// NewWithClient creates a Store with a custom client, used for testing.
func NewWithClient(bucket string, client ObjectAPI) *Store {
	return &Store{bucket: bucket, client: client}
}

// Fetch downloads the object stored under key.
func (s *Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", s.bucket, key, err)
	}
	return data, nil
}

// Delete removes the object stored under key. On a versioned bucket the
// returned ID is the version of the delete marker.
func (s *Store) Delete(ctx context.Context, key string) (string, error) {
	out, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to delete s3://%s/%s: %w", s.bucket, key, err)
	}
	return aws.ToString(out.VersionId), nil
}

// Location returns the bucket name.
func (s *Store) Location() string {
	return s.bucket
}
