package queryservice

import "context"

type QueryService interface {
	EnsureDatabase(ctx context.Context, name string) (string, error)
	OutputLocation() string
}

// Type assertion
var _ QueryService = (*Athena)(nil)
