package processing

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Amund211/epl-datalake/internal/domain"
)

// PlayersToJSONLines encodes the players as line-delimited JSON.
//
// One object per line, in input order, separated by "\n" with no trailing newline.
func PlayersToJSONLines(players []domain.Player) ([]byte, error) {
	var buf bytes.Buffer
	for i, player := range players {
		line, err := json.Marshal(player)
		if err != nil {
			return nil, fmt.Errorf("failed to encode player %d: %w", player.PlayerID, err)
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(line)
	}
	return buf.Bytes(), nil
}

// PlayersFromJSONLines is the inverse of PlayersToJSONLines. Blank lines are ignored.
func PlayersFromJSONLines(data []byte) ([]domain.Player, error) {
	players := []domain.Player{}
	for i, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var player domain.Player
		if err := json.Unmarshal(line, &player); err != nil {
			return nil, fmt.Errorf("failed to decode line %d: %w", i+1, err)
		}
		players = append(players, player)
	}
	return players, nil
}
