package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Amund211/epl-datalake/internal/adapters/catalog"
	"github.com/Amund211/epl-datalake/internal/adapters/objectstore"
	"github.com/Amund211/epl-datalake/internal/adapters/queryservice"
	"github.com/Amund211/epl-datalake/internal/config"
	"github.com/Amund211/epl-datalake/internal/domain"
	"github.com/Amund211/epl-datalake/internal/logging"
	"github.com/Amund211/epl-datalake/internal/processing"
	"github.com/Amund211/epl-datalake/internal/reporting"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const playerDataContentType = "application/x-ndjson"

// SetupDataLake runs every stage of the data lake setup in order and reports the outcome of each.
//
// Stages never abort the run. A failed stage is recorded and the next one is started.
type SetupDataLake func(ctx context.Context, runID string) domain.RunReport

func BuildSetupDataLake(
	conf config.Config,
	store objectstore.ObjectStore,
	dataCatalog catalog.Catalog,
	queryService queryservice.QueryService,
	fetchPlayers FetchPlayers,
	nowFunc func() time.Time,
	afterFunc func(time.Duration) <-chan time.Time,
) (SetupDataLake, error) {
	const name = "epl-datalake/app/setup_datalake"

	tracer := otel.Tracer(name)
	stageCount, err := otel.Meter(name).Int64Counter("app/setup_datalake/stages")
	if err != nil {
		return nil, fmt.Errorf("failed to create stage metric: %w", err)
	}

	runStage := func(ctx context.Context, stage domain.Stage, run func(ctx context.Context) domain.StageResult) domain.StageResult {
		ctx = logging.AddMetaToContext(ctx, slog.String("stage", string(stage)))
		ctx = reporting.AddTagsToContext(ctx, map[string]string{"stage": string(stage)})
		ctx, span := tracer.Start(ctx, fmt.Sprintf("SetupDataLake.%s", stage))
		defer span.End()

		logger := logging.FromContext(ctx)

		result := run(ctx)
		if result.Stage != stage {
			panic(fmt.Sprintf("logic error: stage %s returned result for %s", stage, result.Stage))
		}

		span.SetAttributes(attribute.String("outcome", string(result.Outcome)))
		stageCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", string(stage)),
			attribute.String("outcome", string(result.Outcome)),
		))

		switch result.Outcome {
		case domain.OutcomeFailed:
			logger.ErrorContext(ctx, "Stage failed", "error", result.Err.Error())
			reporting.Report(ctx, result.Err)
		case domain.OutcomeSkipped:
			logger.InfoContext(ctx, "Stage skipped", "detail", result.Detail)
		default:
			logger.InfoContext(ctx, "Stage completed", "outcome", string(result.Outcome), "detail", result.Detail)
		}

		return result
	}

	provisioned := func(stage domain.Stage, err error, created, existed string) domain.StageResult {
		if err == nil {
			return domain.Succeeded(stage, created)
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			return domain.AlreadyExisted(stage, existed)
		}
		return domain.Failed(stage, err)
	}

	return func(ctx context.Context, runID string) domain.RunReport {
		ctx = reporting.SetStartedAtInContext(ctx, nowFunc())
		ctx = reporting.AddTagsToContext(ctx, map[string]string{"runID": runID})
		logger := logging.FromContext(ctx)

		report := domain.RunReport{
			RunID:     runID,
			StartedAt: nowFunc(),
			Stages:    []domain.StageResult{},
		}

		logger.InfoContext(ctx, "Setting up data lake for EPL player analytics...", "config", conf.NonSensitiveString())

		bucketResult := runStage(ctx, domain.StageBucket, func(ctx context.Context) domain.StageResult {
			err := store.EnsureBucket(ctx)
			return provisioned(
				domain.StageBucket,
				err,
				fmt.Sprintf("S3 bucket '%s' created successfully.", store.Bucket()),
				fmt.Sprintf("S3 bucket '%s' already exists. Skipping creation.", store.Bucket()),
			)
		})
		report.Add(bucketResult)

		// A freshly created bucket may not be visible to the other services right away
		if bucketResult.Outcome == domain.OutcomeSucceeded && conf.BucketSettleDelay() > 0 {
			logger.InfoContext(ctx, "Waiting for the new bucket to settle", "delay", conf.BucketSettleDelay().String())
			select {
			case <-afterFunc(conf.BucketSettleDelay()):
			case <-ctx.Done():
			}
		}

		report.Add(runStage(ctx, domain.StageDatabase, func(ctx context.Context) domain.StageResult {
			err := dataCatalog.CreateDatabase(ctx)
			return provisioned(
				domain.StageDatabase,
				err,
				fmt.Sprintf("Glue database '%s' created successfully.", conf.GlueDatabaseName()),
				fmt.Sprintf("Glue database '%s' already exists.", conf.GlueDatabaseName()),
			)
		}))

		var players []domain.Player
		report.Add(runStage(ctx, domain.StageFetch, func(ctx context.Context) domain.StageResult {
			fetched, summary, err := fetchPlayers(ctx)
			report.Fetch = summary
			if err != nil {
				return domain.Failed(domain.StageFetch, err)
			}
			players = fetched
			return domain.Succeeded(
				domain.StageFetch,
				fmt.Sprintf("fetched %d players from %d of %d teams", len(fetched), summary.TeamsFetched, summary.TeamsListed),
			)
		}))

		report.Add(runStage(ctx, domain.StageUpload, func(ctx context.Context) domain.StageResult {
			if len(players) == 0 {
				return domain.Skipped(domain.StageUpload, "no players fetched, nothing to upload")
			}

			logging.FromContext(ctx).InfoContext(ctx, "Converting data to line-delimited JSON format...")
			data, err := processing.PlayersToJSONLines(players)
			if err != nil {
				return domain.Failed(domain.StageUpload, fmt.Errorf("failed to serialize players: %w", err))
			}

			err = store.PutObject(ctx, conf.PlayerDataKey(), data, playerDataContentType)
			if err != nil {
				return domain.Failed(domain.StageUpload, err)
			}
			return domain.Succeeded(domain.StageUpload, fmt.Sprintf("Uploaded data to S3: %s", conf.PlayerDataKey()))
		}))

		report.Add(runStage(ctx, domain.StageTable, func(ctx context.Context) domain.StageResult {
			table := catalog.PlayersTable(conf.RawDataLocation())
			err := dataCatalog.CreateTable(ctx, table)
			return provisioned(
				domain.StageTable,
				err,
				fmt.Sprintf("Glue table '%s' created successfully.", table.Name),
				fmt.Sprintf("Glue table '%s' already exists.", table.Name),
			)
		}))

		report.Add(runStage(ctx, domain.StageQueryService, func(ctx context.Context) domain.StageResult {
			queryExecutionID, err := queryService.EnsureDatabase(ctx, conf.AthenaDatabaseName())
			if err != nil {
				return domain.Failed(domain.StageQueryService, err)
			}
			return domain.Succeeded(
				domain.StageQueryService,
				fmt.Sprintf("Athena output location %s configured (query %s)", queryService.OutputLocation(), queryExecutionID),
			)
		}))

		report.FinishedAt = nowFunc()

		logger.InfoContext(
			ctx,
			"Data lake setup complete.",
			"outcomes", report.Outcomes(),
			"failedStages", len(report.Failed()),
			"players", report.Fetch.PlayerCount,
			"duration", report.FinishedAt.Sub(report.StartedAt).String(),
		)

		return report
	}, nil
}
