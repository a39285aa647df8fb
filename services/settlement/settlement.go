package settlement

import (
	"encoding/json"
	"log"

	"github.com/kamalbuilds/pizza-panic-sub000/services/game"
)

// Outcome is the payload handed to the settlement layer when a match ends.
// Stakes and chain options pass through opaque; the engine never interprets
// them.
type Outcome struct {
	GameID       string            `json:"game_id"`
	Result       game.Result       `json:"result"`
	Rounds       int               `json:"rounds"`
	Stakes       string            `json:"stakes,omitempty"`
	ChainOptions json.RawMessage   `json:"chain_options,omitempty"`
	Winners      []string          `json:"winners"`
	Reveals      []game.RoleReveal `json:"reveals"`
}

// Notifier receives final outcomes. Implementations settle stakes on whatever
// rail the deployment uses; the engine calls them fire-and-forget.
type Notifier interface {
	NotifyGameEnd(outcome Outcome) error
}

// LogNotifier is the default Notifier: it records the outcome and settles
// nothing. Deployments with real stakes swap in their own implementation.
type LogNotifier struct{}

func (LogNotifier) NotifyGameEnd(outcome Outcome) error {
	log.Printf("[SETTLEMENT] game %s: %s after %d rounds, %d winners, stakes=%q",
		outcome.GameID, outcome.Result, outcome.Rounds, len(outcome.Winners), outcome.Stakes)
	return nil
}

// BuildOutcome derives the settlement payload from a finished game and its
// end-of-game disclosure.
func BuildOutcome(g *game.Game, end game.GameEndPayload) Outcome {
	var winners []string
	for _, r := range end.Reveals {
		won := (end.Result == game.ResultCrewWin && r.Role == game.RoleChef) ||
			(end.Result == game.ResultSaboteurWin && r.Role == game.RoleSaboteur)
		if won {
			winners = append(winners, r.Address)
		}
	}

	return Outcome{
		GameID:       g.ID,
		Result:       end.Result,
		Rounds:       end.Rounds,
		Stakes:       g.Stakes(),
		ChainOptions: g.ChainOptions(),
		Winners:      winners,
		Reveals:      end.Reveals,
	}
}
