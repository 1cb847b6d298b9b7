package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Amund211/epl-datalake/internal/adapters/sportsdata"
	"github.com/Amund211/epl-datalake/internal/domain"
	"github.com/Amund211/epl-datalake/internal/logging"
	"github.com/Amund211/epl-datalake/internal/reporting"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// FetchPlayers fetches the rosters of all teams.
//
// A failing team is skipped and recorded in the summary. An error is only
// returned if the team list itself could not be fetched or ctx was cancelled,
// in which case no players are returned.
type FetchPlayers func(ctx context.Context) ([]domain.Player, domain.FetchSummary, error)

type fetchPlayersMetricsCollection struct {
	teamCount   metric.Int64Counter
	playerCount metric.Int64Counter
}

func setupFetchPlayersMetrics(meter metric.Meter) (fetchPlayersMetricsCollection, error) {
	teamCount, err := meter.Int64Counter("app/fetch_players/teams")
	if err != nil {
		return fetchPlayersMetricsCollection{}, fmt.Errorf("failed to create team count metric: %w", err)
	}

	playerCount, err := meter.Int64Counter("app/fetch_players/players")
	if err != nil {
		return fetchPlayersMetricsCollection{}, fmt.Errorf("failed to create player count metric: %w", err)
	}

	return fetchPlayersMetricsCollection{
		teamCount:   teamCount,
		playerCount: playerCount,
	}, nil
}

func BuildFetchPlayers(
	provider sportsdata.Provider,
	teamDelay time.Duration,
	afterFunc func(time.Duration) <-chan time.Time,
) (FetchPlayers, error) {
	metrics, err := setupFetchPlayersMetrics(otel.Meter("epl-datalake/app/fetch_players"))
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	recordTeam := func(ctx context.Context, outcome string, statusCode int) {
		metrics.teamCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", outcome),
			attribute.String("status_code", strconv.Itoa(statusCode)),
		))
	}

	return func(ctx context.Context) ([]domain.Player, domain.FetchSummary, error) {
		logger := logging.FromContext(ctx)
		summary := domain.FetchSummary{Skipped: []domain.SkippedTeam{}}

		teams, err := provider.GetTeams(ctx)
		if err != nil {
			if sportsdata.StatusCodeOf(err) != -1 {
				logger.ErrorContext(ctx, "HTTP error fetching EPL data", "error", err.Error())
			} else {
				logger.ErrorContext(ctx, "Error fetching EPL data", "error", err.Error())
			}
			// Reported by the caller along with the failed stage
			return []domain.Player{}, summary, fmt.Errorf("failed to get teams: %w", err)
		}
		summary.TeamsListed = len(teams)

		allPlayers := []domain.Player{}
		for _, team := range teams {
			teamCtx := logging.AddMetaToContext(ctx, slog.String("team", team.Name), slog.Int("teamID", team.TeamID))
			teamCtx = reporting.AddExtrasToContext(teamCtx, map[string]string{
				"team":   team.Name,
				"teamID": strconv.Itoa(team.TeamID),
			})
			teamLogger := logging.FromContext(teamCtx)

			teamLogger.InfoContext(teamCtx, fmt.Sprintf("Fetching data for %s (ID: %d)...", team.Name, team.TeamID))

			players, err := provider.GetPlayersByTeam(teamCtx, team.TeamID)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return []domain.Player{}, summary, fmt.Errorf("fetch interrupted at %s: %w", team.Name, errors.Join(ctxErr, err))
				}

				statusCode := sportsdata.StatusCodeOf(err)
				skipped := domain.SkippedTeam{Team: team, StatusCode: statusCode, Reason: err.Error()}
				summary.Skipped = append(summary.Skipped, skipped)
				recordTeam(teamCtx, "skipped", statusCode)

				if statusCode == http.StatusBadRequest {
					teamLogger.WarnContext(teamCtx, fmt.Sprintf("Skipping %s (ID: %d) due to a 400 error.", team.Name, team.TeamID))
					continue
				}

				teamLogger.ErrorContext(teamCtx, fmt.Sprintf("HTTP error fetching data for %s", team.Name), "error", err.Error(), "status", statusCode)
				reporting.Report(teamCtx, fmt.Errorf("failed to get players for team: %w", err))
				continue
			}

			allPlayers = append(allPlayers, domain.WithTeam(players, team)...)
			summary.TeamsFetched++
			recordTeam(teamCtx, "fetched", http.StatusOK)
			metrics.playerCount.Add(teamCtx, int64(len(players)))

			if teamDelay > 0 {
				select {
				case <-afterFunc(teamDelay):
				case <-ctx.Done():
					return []domain.Player{}, summary, fmt.Errorf("fetch interrupted after %s: %w", team.Name, ctx.Err())
				}
			}
		}

		summary.PlayerCount = len(allPlayers)
		logger.InfoContext(ctx, fmt.Sprintf("Fetched %d players from all EPL teams.", len(allPlayers)), "teamsFetched", summary.TeamsFetched, "teamsSkipped", len(summary.Skipped))

		return allPlayers, summary, nil
	}, nil
}
