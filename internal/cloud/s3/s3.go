// Package s3 implements the object store on S3-compatible services,
// including MinIO via a custom endpoint.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/droidsweep/droidsweep/internal/cloud"
	"github.com/droidsweep/droidsweep/internal/config"
	"github.com/droidsweep/droidsweep/internal/domain"
	"github.com/droidsweep/droidsweep/internal/logger"
	"github.com/droidsweep/droidsweep/internal/metrics"
)

// Store talks to one bucket on an S3-compatible service.
type Store struct {
	client *s3.Client
	bucket string
	log    logger.Logger
}

// New builds a store from config. A custom endpoint switches to
// path-style addressing when cfg.PathStyle is set; empty credentials
// fall back to the default AWS credential chain.
func New(ctx context.Context, cfg config.S3Config, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Get()
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
				}, nil
			},
		)
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
	})

	store := &Store{client: client, bucket: cfg.Bucket, log: log}
	if err := store.ensureBucket(ctx); err != nil {
		log.Warn("bucket check failed", "bucket", cfg.Bucket, "error", err)
	}

	return store, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	start := time.Now()
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		_, createErr := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(s.bucket),
		})
		if createErr != nil {
			metrics.RecordCloudOperation("create_bucket", time.Since(start), false)
			return fmt.Errorf("bucket %s does not exist and cannot create: %w", s.bucket, createErr)
		}
		metrics.RecordCloudOperation("create_bucket", time.Since(start), true)
		s.log.Info("created bucket", "bucket", s.bucket)
	}
	return nil
}

// Put uploads content under key.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	start := time.Now()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		metrics.RecordCloudOperation("put_object", time.Since(start), false)
		return fmt.Errorf("put object %s: %w", key, err)
	}

	metrics.RecordCloudOperation("put_object", time.Since(start), true)
	s.log.Debug("s3 put object", "key", key, "size", size)
	return nil
}

// Get opens the object at key for reading.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	start := time.Now()

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		metrics.RecordCloudOperation("get_object", time.Since(start), false)
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, domain.ErrObjectNotFound
		}
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}

	metrics.RecordCloudOperation("get_object", time.Since(start), true)
	return result.Body, nil
}

// List pages through every key under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]cloud.ObjectInfo, error) {
	var result []cloud.ObjectInfo
	var continuation *string

	for {
		start := time.Now()
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			metrics.RecordCloudOperation("list_objects", time.Since(start), false)
			return nil, fmt.Errorf("list objects %s: %w", prefix, err)
		}
		metrics.RecordCloudOperation("list_objects", time.Since(start), true)

		for _, obj := range page.Contents {
			info := cloud.ObjectInfo{Key: aws.ToString(obj.Key)}
			if obj.Size != nil {
				info.Size = *obj.Size
			}
			result = append(result, info)
		}

		if !aws.ToBool(page.IsTruncated) || page.NextContinuationToken == nil {
			break
		}
		continuation = page.NextContinuationToken
	}

	return result, nil
}

// Close is a no-op for S3 stores.
func (s *Store) Close() error { return nil }

var _ cloud.ObjectStore = (*Store)(nil)
