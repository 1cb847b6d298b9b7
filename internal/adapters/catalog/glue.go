package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Amund211/epl-datalake/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const databaseDescription = "Glue database for EPL player analytics."

// GlueAPI is the subset of *glue.Client used by GlueCatalog
type GlueAPI interface {
	CreateDatabase(ctx context.Context, params *glue.CreateDatabaseInput, optFns ...func(*glue.Options)) (*glue.CreateDatabaseOutput, error)
	CreateTable(ctx context.Context, params *glue.CreateTableInput, optFns ...func(*glue.Options)) (*glue.CreateTableOutput, error)
}

type GlueCatalog struct {
	client   GlueAPI
	database string

	tracer trace.Tracer
}

func NewGlueCatalog(client GlueAPI, database string) *GlueCatalog {
	return &GlueCatalog{
		client:   client,
		database: database,

		tracer: otel.Tracer("epl-datalake/catalog/glue"),
	}
}

func (c *GlueCatalog) Database() string {
	return c.database
}

// CreateDatabase returns domain.ErrAlreadyExists if the database is already registered
func (c *GlueCatalog) CreateDatabase(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "GlueCatalog.CreateDatabase", trace.WithAttributes(attribute.String("database", c.database)))
	defer span.End()

	_, err := c.client.CreateDatabase(ctx, &glue.CreateDatabaseInput{
		DatabaseInput: &types.DatabaseInput{
			Name:        aws.String(c.database),
			Description: aws.String(databaseDescription),
		},
	})
	if err != nil {
		return c.wrapError(span, fmt.Sprintf("database %s", c.database), err)
	}
	return nil
}

// CreateTable returns domain.ErrAlreadyExists if a table with the same name is already registered
func (c *GlueCatalog) CreateTable(ctx context.Context, table TableDefinition) error {
	ctx, span := c.tracer.Start(
		ctx,
		"GlueCatalog.CreateTable",
		trace.WithAttributes(
			attribute.String("database", c.database),
			attribute.String("table", table.Name),
		),
	)
	defer span.End()

	_, err := c.client.CreateTable(ctx, &glue.CreateTableInput{
		DatabaseName: aws.String(c.database),
		TableInput:   table.toTableInput(),
	})
	if err != nil {
		return c.wrapError(span, fmt.Sprintf("table %s.%s", c.database, table.Name), err)
	}
	return nil
}

func (c *GlueCatalog) wrapError(span trace.Span, what string, err error) error {
	var alreadyExists *types.AlreadyExistsException
	if errors.As(err, &alreadyExists) {
		return fmt.Errorf("%s: %w", what, domain.ErrAlreadyExists)
	}

	err = fmt.Errorf("failed to create %s: %w", what, err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
