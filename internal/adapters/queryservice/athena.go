package queryservice

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Athena database names may only contain lowercase letters, digits and underscores
var databaseNameRx = regexp.MustCompile(`^[a-z0-9_]{1,255}$`)

// AthenaAPI is the subset of *athena.Client used by Athena
type AthenaAPI interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
}

type Athena struct {
	client          AthenaAPI
	catalogDatabase string
	outputLocation  string

	tracer trace.Tracer
}

// NewAthena runs statements in the context of catalogDatabase, writing results to outputLocation
func NewAthena(client AthenaAPI, catalogDatabase, outputLocation string) *Athena {
	return &Athena{
		client:          client,
		catalogDatabase: catalogDatabase,
		outputLocation:  outputLocation,

		tracer: otel.Tracer("epl-datalake/queryservice/athena"),
	}
}

func (a *Athena) OutputLocation() string {
	return a.outputLocation
}

// EnsureDatabase submits a CREATE DATABASE IF NOT EXISTS statement.
//
// The statement runs asynchronously. Returns the query execution id.
func (a *Athena) EnsureDatabase(ctx context.Context, name string) (string, error) {
	ctx, span := a.tracer.Start(ctx, "Athena.EnsureDatabase", trace.WithAttributes(attribute.String("database", name)))
	defer span.End()

	if !databaseNameRx.MatchString(name) {
		err := fmt.Errorf("invalid athena database name %q", name)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	output, err := a.client.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString: aws.String(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", name)),
		QueryExecutionContext: &types.QueryExecutionContext{
			Database: aws.String(a.catalogDatabase),
		},
		ResultConfiguration: &types.ResultConfiguration{
			OutputLocation: aws.String(a.outputLocation),
		},
	})
	if err != nil {
		err := fmt.Errorf("failed to start query execution: %w", err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	queryExecutionID := aws.ToString(output.QueryExecutionId)
	span.SetAttributes(attribute.String("query_execution_id", queryExecutionID))

	return queryExecutionID, nil
}
