package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Amund211/epl-datalake/internal/app"
	"github.com/Amund211/epl-datalake/internal/config"
	"github.com/Amund211/epl-datalake/internal/logging"
	"github.com/Amund211/epl-datalake/internal/telemetry"
	"github.com/Amund211/epl-datalake/internal/wiring"
)

func run(ctx context.Context, stdout io.Writer, logger *slog.Logger) error {
	err := config.LoadDotEnv()
	if err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	conf, err := config.SportsDataConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, err := wiring.NewSportsDataClient(conf, telemetry.NewHTTPClient(10*time.Second))
	if err != nil {
		return err
	}

	teams, err := app.BuildListTeams(client)(logging.AddToContext(ctx, logger))
	if err != nil {
		return err
	}

	_, err = io.WriteString(stdout, app.FormatTeamListing(teams))
	return err
}

func main() {
	// Logs go to stderr to keep the listing clean
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	err := run(context.Background(), os.Stdout, logger)
	if err != nil {
		logger.Error("Failed to list teams", "error", err.Error())
		os.Exit(1)
	}
}
