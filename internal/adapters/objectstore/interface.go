package objectstore

import "context"

type ObjectStore interface {
	// Returns domain.ErrAlreadyExists if there was nothing to create
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	Bucket() string
}

// Type assertion
var _ ObjectStore = (*S3Store)(nil)
