package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Amund211/epl-datalake/internal/domain"
	"github.com/Amund211/epl-datalake/internal/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// us-east-1 is the default location and must not be sent as a LocationConstraint
const defaultRegion = "us-east-1"

// S3API is the subset of *s3.Client used by S3Store
type S3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	client S3API
	bucket string
	region string

	tracer trace.Tracer
}

func NewS3Store(client S3API, bucket, region string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		region: region,

		tracer: otel.Tracer("epl-datalake/objectstore/s3"),
	}
}

func (s *S3Store) Bucket() string {
	return s.bucket
}

// EnsureBucket creates the bucket unless it already exists.
//
// Returns domain.ErrAlreadyExists if the bucket was already there.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "S3Store.EnsureBucket", trace.WithAttributes(attribute.String("bucket", s.bucket)))
	defer span.End()

	logger := logging.FromContext(ctx)

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return fmt.Errorf("bucket %s: %w", s.bucket, domain.ErrAlreadyExists)
	}
	if !isNotFound(err) {
		err := fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	logger.InfoContext(ctx, "Bucket does not exist, creating", "bucket", s.bucket, "region", s.region)

	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	if s.region != "" && s.region != defaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}

	_, err = s.client.CreateBucket(ctx, input)
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			// Created between our HeadBucket and CreateBucket
			return fmt.Errorf("bucket %s: %w", s.bucket, domain.ErrAlreadyExists)
		}
		err := fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// PutObject writes body to key, replacing any existing object
func (s *S3Store) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	ctx, span := s.tracer.Start(
		ctx,
		"S3Store.PutObject",
		trace.WithAttributes(
			attribute.String("bucket", s.bucket),
			attribute.String("key", key),
			attribute.Int("size", len(body)),
		),
	)
	defer span.End()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		err := fmt.Errorf("failed to put s3://%s/%s: %w", s.bucket, key, err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket", "404":
			return true
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}

	return false
}
