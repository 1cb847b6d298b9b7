package wiring

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Amund211/epl-datalake/internal/adapters/awsclients"
	"github.com/Amund211/epl-datalake/internal/adapters/catalog"
	"github.com/Amund211/epl-datalake/internal/adapters/objectstore"
	"github.com/Amund211/epl-datalake/internal/adapters/queryservice"
	"github.com/Amund211/epl-datalake/internal/adapters/sportsdata"
	"github.com/Amund211/epl-datalake/internal/app"
	"github.com/Amund211/epl-datalake/internal/config"
	"github.com/Amund211/epl-datalake/internal/ratelimiting"
)

// Upstream requests are spread out on top of the per-team delay
const (
	sportsDataRefillPerSecond ratelimiting.RefillPerSecond = 2
	sportsDataBurstSize       ratelimiting.BurstSize       = 2
)

func NewSportsDataClient(conf config.Config, httpClient *http.Client) (*sportsdata.Client, error) {
	limiter := ratelimiting.NewTokenBucketRequestLimiter(sportsDataRefillPerSecond, sportsDataBurstSize)

	client, err := sportsdata.NewClient(
		httpClient,
		limiter,
		conf.SportsDataAPIKey(),
		conf.EPLEndpoint(),
		conf.SportsDataBaseURL(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sportsdata client: %w", err)
	}
	return client, nil
}

// NewSetupDataLake connects every stage of the data lake setup to its AWS service
func NewSetupDataLake(ctx context.Context, conf config.Config, httpClient *http.Client) (app.SetupDataLake, error) {
	provider, err := NewSportsDataClient(conf, httpClient)
	if err != nil {
		return nil, err
	}

	fetchPlayers, err := app.BuildFetchPlayers(provider, conf.TeamDelay(), time.After)
	if err != nil {
		return nil, fmt.Errorf("failed to build fetch players: %w", err)
	}

	awsConfig, err := awsclients.LoadAWSConfig(ctx, conf.Region(), httpClient)
	if err != nil {
		return nil, err
	}
	clients := awsclients.NewClients(awsConfig)

	store := objectstore.NewS3Store(clients.S3, conf.BucketName(), conf.Region())
	dataCatalog := catalog.NewGlueCatalog(clients.Glue, conf.GlueDatabaseName())
	queryService := queryservice.NewAthena(clients.Athena, conf.GlueDatabaseName(), conf.AthenaOutputLocation())

	setupDataLake, err := app.BuildSetupDataLake(
		conf,
		store,
		dataCatalog,
		queryService,
		fetchPlayers,
		time.Now,
		time.After,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build setup data lake: %w", err)
	}
	return setupDataLake, nil
}
