package objectstore_test

import (
	"context"
	"io"
	"testing"

	"github.com/Amund211/epl-datalake/internal/adapters/objectstore"
	"github.com/Amund211/epl-datalake/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockedS3 struct {
	t *testing.T

	headErr   error
	createErr error
	putErr    error

	createInputs []*s3.CreateBucketInput
	objects      map[string][]byte
	contentTypes map[string]string
}

func newMockedS3(t *testing.T) *mockedS3 {
	return &mockedS3{
		t:            t,
		objects:      map[string][]byte{},
		contentTypes: map[string]string{},
	}
}

func (m *mockedS3) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	require.Equal(m.t, "bucket", aws.ToString(params.Bucket))
	if m.headErr != nil {
		return nil, m.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (m *mockedS3) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	require.Equal(m.t, "bucket", aws.ToString(params.Bucket))
	m.createInputs = append(m.createInputs, params)
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &s3.CreateBucketOutput{}, nil
}

func (m *mockedS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	require.Equal(m.t, "bucket", aws.ToString(params.Bucket))
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(params.Body)
	require.NoError(m.t, err)
	require.Equal(m.t, int64(len(data)), aws.ToInt64(params.ContentLength))

	key := aws.ToString(params.Key)
	m.objects[key] = data
	m.contentTypes[key] = aws.ToString(params.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestEnsureBucket(t *testing.T) {
	t.Parallel()

	t.Run("already exists", func(t *testing.T) {
		t.Parallel()

		client := newMockedS3(t)
		store := objectstore.NewS3Store(client, "bucket", "eu-central-1")

		err := store.EnsureBucket(t.Context())
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
		require.Empty(t, client.createInputs)
	})

	notFoundErrors := map[string]error{
		"typed not found": &types.NotFound{},
		"generic api error": &smithy.GenericAPIError{
			Code:    "NotFound",
			Message: "Not Found",
		},
		"numeric code": &smithy.GenericAPIError{Code: "404"},
	}
	for name, headErr := range notFoundErrors {
		t.Run("creates when missing: "+name, func(t *testing.T) {
			t.Parallel()

			client := newMockedS3(t)
			client.headErr = headErr
			store := objectstore.NewS3Store(client, "bucket", "eu-central-1")

			require.NoError(t, store.EnsureBucket(t.Context()))
			require.Len(t, client.createInputs, 1)
			require.Equal(
				t,
				types.BucketLocationConstraint("eu-central-1"),
				client.createInputs[0].CreateBucketConfiguration.LocationConstraint,
			)
		})
	}

	t.Run("us-east-1 has no location constraint", func(t *testing.T) {
		t.Parallel()

		client := newMockedS3(t)
		client.headErr = &types.NotFound{}
		store := objectstore.NewS3Store(client, "bucket", "us-east-1")

		require.NoError(t, store.EnsureBucket(t.Context()))
		require.Len(t, client.createInputs, 1)
		require.Nil(t, client.createInputs[0].CreateBucketConfiguration)
	})

	t.Run("forbidden is not treated as missing", func(t *testing.T) {
		t.Parallel()

		client := newMockedS3(t)
		client.headErr = &smithy.GenericAPIError{Code: "Forbidden"}
		store := objectstore.NewS3Store(client, "bucket", "eu-central-1")

		err := store.EnsureBucket(t.Context())
		require.Error(t, err)
		require.NotErrorIs(t, err, domain.ErrAlreadyExists)
		require.Empty(t, client.createInputs)
	})

	t.Run("create fails", func(t *testing.T) {
		t.Parallel()

		client := newMockedS3(t)
		client.headErr = &types.NotFound{}
		client.createErr = assert.AnError
		store := objectstore.NewS3Store(client, "bucket", "eu-central-1")

		err := store.EnsureBucket(t.Context())
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("created concurrently", func(t *testing.T) {
		t.Parallel()

		client := newMockedS3(t)
		client.headErr = &types.NotFound{}
		client.createErr = &types.BucketAlreadyOwnedByYou{}
		store := objectstore.NewS3Store(client, "bucket", "eu-central-1")

		err := store.EnsureBucket(t.Context())
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
	})
}

func TestPutObject(t *testing.T) {
	t.Parallel()

	t.Run("overwrites", func(t *testing.T) {
		t.Parallel()

		client := newMockedS3(t)
		store := objectstore.NewS3Store(client, "bucket", "eu-central-1")

		require.NoError(t, store.PutObject(t.Context(), "raw-data/epl_player_data.jsonl", []byte("first"), "application/x-ndjson"))
		require.NoError(t, store.PutObject(t.Context(), "raw-data/epl_player_data.jsonl", []byte("second"), "application/x-ndjson"))

		require.Len(t, client.objects, 1)
		require.Equal(t, []byte("second"), client.objects["raw-data/epl_player_data.jsonl"])
		require.Equal(t, "application/x-ndjson", client.contentTypes["raw-data/epl_player_data.jsonl"])
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		client := newMockedS3(t)
		client.putErr = assert.AnError
		store := objectstore.NewS3Store(client, "bucket", "eu-central-1")

		err := store.PutObject(t.Context(), "key", []byte("data"), "text/plain")
		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "s3://bucket/key")
	})
}
