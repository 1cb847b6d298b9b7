package domain

// Player is one roster entry as stored in the data lake.
//
// Team is not part of the upstream roster response. It is set to the name of
// the team the roster was requested for.
//
// The API sends null for unknown positions, nationalities and jersey numbers.
// Those stay nil so they are stored as null.
type Player struct {
	PlayerID    int     `json:"PlayerID"`
	FirstName   string  `json:"FirstName"`
	LastName    string  `json:"LastName"`
	Position    *string `json:"Position"`
	Nationality *string `json:"Nationality"`
	Jersey      *int    `json:"Jersey"`
	Team        string  `json:"Team"`
}

// WithTeam returns copies of the given players with Team set to team.Name
func WithTeam(players []Player, team Team) []Player {
	result := make([]Player, len(players))
	for i, player := range players {
		player.Team = team.Name
		result[i] = player
	}
	return result
}
