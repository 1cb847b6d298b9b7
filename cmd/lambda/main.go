package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/Amund211/epl-datalake/internal/app"
	"github.com/Amund211/epl-datalake/internal/config"
	"github.com/Amund211/epl-datalake/internal/domain"
	"github.com/Amund211/epl-datalake/internal/logging"
	"github.com/Amund211/epl-datalake/internal/reporting"
	"github.com/Amund211/epl-datalake/internal/telemetry"
	"github.com/Amund211/epl-datalake/internal/wiring"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"

	// The provided.al2023 runtime image may ship without a CA bundle
	_ "golang.org/x/crypto/x509roots/fallback"
)

type stageResponse struct {
	Stage   string `json:"stage"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

type skippedTeamResponse struct {
	Team       string `json:"team"`
	TeamID     int    `json:"teamId"`
	StatusCode int    `json:"statusCode"`
}

type response struct {
	RunID        string                `json:"runId"`
	StartedAt    time.Time             `json:"startedAt"`
	FinishedAt   time.Time             `json:"finishedAt"`
	Stages       []stageResponse       `json:"stages"`
	Players      int                   `json:"players"`
	SkippedTeams []skippedTeamResponse `json:"skippedTeams"`
	FailedStages int                   `json:"failedStages"`
}

func toResponse(report domain.RunReport) response {
	stages := make([]stageResponse, 0, len(report.Stages))
	for _, result := range report.Stages {
		stages = append(stages, stageResponse{
			Stage:   string(result.Stage),
			Outcome: string(result.Outcome),
			Detail:  result.Detail,
		})
	}

	skipped := make([]skippedTeamResponse, 0, len(report.Fetch.Skipped))
	for _, team := range report.Fetch.Skipped {
		skipped = append(skipped, skippedTeamResponse{
			Team:       team.Team.Name,
			TeamID:     team.Team.TeamID,
			StatusCode: team.StatusCode,
		})
	}

	return response{
		RunID:        report.RunID,
		StartedAt:    report.StartedAt,
		FinishedAt:   report.FinishedAt,
		Stages:       stages,
		Players:      report.Fetch.PlayerCount,
		SkippedTeams: skipped,
		FailedStages: len(report.Failed()),
	}
}

const telemetryFlushTimeout = 5 * time.Second

type handler struct {
	setupDataLake app.SetupDataLake
	logger        *slog.Logger
	// The execution environment may be frozen after the invocation returns
	flush          func()
	flushTelemetry func(context.Context) error
}

func (h *handler) Handle(ctx context.Context) (response, error) {
	runID := uuid.New().String()
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		runID = lc.AwsRequestID
	}

	logger := h.logger.With("runID", runID)
	ctx = logging.AddToContext(ctx, logger)
	ctx = reporting.AddHubToContext(ctx)
	defer h.flush()

	report := h.setupDataLake(ctx, runID)

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryFlushTimeout)
	defer cancel()
	if err := h.flushTelemetry(flushCtx); err != nil {
		logger.ErrorContext(ctx, "Failed to flush telemetry", "error", err.Error())
	}

	return toResponse(report), nil
}

func main() {
	logger := slog.New(logging.NewTracingLogHandler(slog.NewJSONHandler(os.Stdout, nil)))

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	conf, err := config.ConfigFromEnv()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}
	logger.Info("Loaded config", "config", conf.NonSensitiveString())

	flush, sentryEnabled, err := reporting.NewSentryOrMock(conf)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	logger.Info("Initialized Sentry", "enabled", sentryEnabled)

	ctx := context.Background()

	_, flushTelemetry, err := telemetry.SetupOTelSDK(ctx, "epl-datalake-lambda", conf.OTLPEndpoint())
	if err != nil {
		fail("Failed to set up OpenTelemetry", "error", err.Error())
	}

	setupDataLake, err := wiring.NewSetupDataLake(ctx, conf, telemetry.NewHTTPClient(10*time.Second))
	if err != nil {
		fail("Failed to initialize data lake setup", "error", err.Error())
	}

	h := &handler{
		setupDataLake:  setupDataLake,
		logger:         logger,
		flush:          flush,
		flushTelemetry: flushTelemetry,
	}
	lambda.Start(h.Handle)
}
