package main

import (
	"context"
	"os"
	"time"

	"github.com/Amund211/epl-datalake/internal/config"
	"github.com/Amund211/epl-datalake/internal/logging"
	"github.com/Amund211/epl-datalake/internal/reporting"
	"github.com/Amund211/epl-datalake/internal/telemetry"
	"github.com/Amund211/epl-datalake/internal/wiring"
	"github.com/google/uuid"
)

const serviceName = "epl-datalake"

func main() {
	runID := uuid.New().String()
	logger := logging.NewRunLogger(os.Stdout, runID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	err := config.LoadDotEnv()
	if err != nil {
		fail("Failed to load .env file", "error", err.Error())
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
	defer flush()
	logger.Info("Initialized Sentry", "enabled", sentryEnabled)

	ctx := logging.AddToContext(context.Background(), logger)
	ctx = reporting.AddHubToContext(ctx)

	shutdown, _, err := telemetry.SetupOTelSDK(ctx, serviceName, conf.OTLPEndpoint())
	if err != nil {
		fail("Failed to set up OpenTelemetry", "error", err.Error())
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
		}
	}()

	httpClient := telemetry.NewHTTPClient(10 * time.Second)

	setupDataLake, err := wiring.NewSetupDataLake(ctx, conf, httpClient)
	if err != nil {
		fail("Failed to initialize data lake setup", "error", err.Error())
	}
	logger.Info("Init complete")

	report := setupDataLake(ctx, runID)

	// Failed stages are logged and reported, the process still exits cleanly
	logger.Info("Run report", "report", report.Outcomes(), "fetch", report.Fetch)
}
