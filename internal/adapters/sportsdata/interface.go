package sportsdata

import (
	"context"

	"github.com/Amund211/epl-datalake/internal/domain"
)

type TeamProvider interface {
	GetTeams(ctx context.Context) ([]domain.Team, error)
}

type Provider interface {
	TeamProvider

	// Returns a *StatusError for non-2xx responses. The Team field of the players is not set.
	GetPlayersByTeam(ctx context.Context, teamID int) ([]domain.Player, error)
}

// Type assertion
var _ Provider = (*Client)(nil)
