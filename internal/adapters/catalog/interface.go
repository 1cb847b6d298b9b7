package catalog

import "context"

type Catalog interface {
	// Both return domain.ErrAlreadyExists if the entry is already registered
	CreateDatabase(ctx context.Context) error
	CreateTable(ctx context.Context, table TableDefinition) error
}

// Type assertion
var _ Catalog = (*GlueCatalog)(nil)
