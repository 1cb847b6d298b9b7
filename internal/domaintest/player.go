package domaintest

import (
	"github.com/Amund211/epl-datalake/internal/domain"
)

type playerBuilder struct {
	player *domain.Player
}

func (pb *playerBuilder) WithName(firstName, lastName string) *playerBuilder {
	pb.player.FirstName = firstName
	pb.player.LastName = lastName
	return pb
}

func (pb *playerBuilder) WithPosition(position string) *playerBuilder {
	pb.player.Position = &position
	return pb
}

func (pb *playerBuilder) WithNationality(nationality string) *playerBuilder {
	pb.player.Nationality = &nationality
	return pb
}

func (pb *playerBuilder) WithJersey(jersey int) *playerBuilder {
	pb.player.Jersey = &jersey
	return pb
}

// WithoutJersey models a player with no squad number assigned
func (pb *playerBuilder) WithoutJersey() *playerBuilder {
	pb.player.Jersey = nil
	return pb
}

func (pb *playerBuilder) WithTeam(team string) *playerBuilder {
	pb.player.Team = team
	return pb
}

func (pb *playerBuilder) Build() domain.Player {
	return *pb.player
}

// NewPlayerBuilder starts from a roster entry as returned by the API, without a team
func NewPlayerBuilder(playerID int) *playerBuilder {
	position := "M"
	nationality := "England"
	jersey := 1
	player := &domain.Player{
		PlayerID:    playerID,
		FirstName:   "First",
		LastName:    "Last",
		Position:    &position,
		Nationality: &nationality,
		Jersey:      &jersey,
	}
	return &playerBuilder{
		player: player,
	}
}

func NewTeam(teamID int, name string) domain.Team {
	return domain.Team{TeamID: teamID, Name: name}
}
