package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/Amund211/epl-datalake/internal/adapters/sportsdata"
	"github.com/Amund211/epl-datalake/internal/domain"
)

type ListTeams func(ctx context.Context) ([]domain.Team, error)

func BuildListTeams(provider sportsdata.TeamProvider) ListTeams {
	return func(ctx context.Context) ([]domain.Team, error) {
		teams, err := provider.GetTeams(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get teams: %w", err)
		}
		return teams, nil
	}
}

// FormatTeamListing renders one "<name> - ID: <id>" line per team
func FormatTeamListing(teams []domain.Team) string {
	var sb strings.Builder
	for _, team := range teams {
		fmt.Fprintf(&sb, "%s - ID: %d\n", team.Name, team.TeamID)
	}
	return sb.String()
}
