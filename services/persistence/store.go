package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kamalbuilds/pizza-panic-sub000/models/postgres"
	"github.com/kamalbuilds/pizza-panic-sub000/services/game"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GameStore persists finished matches and agent profiles to Postgres.
type GameStore struct {
	db *gorm.DB
}

func NewGameStore(db *gorm.DB) *GameStore {
	return &GameStore{db: db}
}

// CompletedGameRecord flattens a finished game plus its end-of-game disclosure
// into the durable row. The game must already be in its End phase so that the
// spectator snapshot carries full role visibility.
func CompletedGameRecord(g *game.Game, end game.GameEndPayload) (*postgres.CompletedGame, error) {
	snapshot := g.GetState("")

	players, err := json.Marshal(snapshot.Players)
	if err != nil {
		return nil, fmt.Errorf("error marshaling players for game %s: %v", g.ID, err)
	}
	messages, err := json.Marshal(snapshot.Messages)
	if err != nil {
		return nil, fmt.Errorf("error marshaling messages for game %s: %v", g.ID, err)
	}
	voteHistory, err := json.Marshal(snapshot.VoteHistory)
	if err != nil {
		return nil, fmt.Errorf("error marshaling vote history for game %s: %v", g.ID, err)
	}
	investigations, err := json.Marshal(g.Investigations())
	if err != nil {
		return nil, fmt.Errorf("error marshaling investigations for game %s: %v", g.ID, err)
	}
	eliminations, err := json.Marshal(snapshot.Eliminations)
	if err != nil {
		return nil, fmt.Errorf("error marshaling eliminations for game %s: %v", g.ID, err)
	}
	reveals, err := json.Marshal(end.Reveals)
	if err != nil {
		return nil, fmt.Errorf("error marshaling reveals for game %s: %v", g.ID, err)
	}

	chainOpts := g.ChainOptions()
	if len(chainOpts) == 0 {
		chainOpts = json.RawMessage("{}")
	}

	return &postgres.CompletedGame{
		ID:             g.ID,
		Result:         string(end.Result),
		Rounds:         end.Rounds,
		Stakes:         g.Stakes(),
		Players:        datatypes.JSON(players),
		Messages:       datatypes.JSON(messages),
		VoteHistory:    datatypes.JSON(voteHistory),
		Investigations: datatypes.JSON(investigations),
		Eliminations:   datatypes.JSON(eliminations),
		Reveals:        datatypes.JSON(reveals),
		ChainOptions:   datatypes.JSON(chainOpts),
		StartedAt:      g.StartedAt(),
		EndedAt:        g.EndedAt(),
	}, nil
}

// SaveCompletedGame inserts the finished match record.
func (s *GameStore) SaveCompletedGame(record *postgres.CompletedGame) error {
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("error saving completed game %s: %v", record.ID, err)
	}
	return nil
}

// GetCompletedGame loads one finished match by id.
func (s *GameStore) GetCompletedGame(id string) (*postgres.CompletedGame, error) {
	var record postgres.CompletedGame
	if err := s.db.First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListCompletedGames returns finished matches, most recent first.
func (s *GameStore) ListCompletedGames(limit int) ([]postgres.CompletedGame, error) {
	var records []postgres.CompletedGame
	query := s.db.Order("ended_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("error listing completed games: %v", err)
	}
	return records, nil
}

// RecordGameOutcome bumps every participant's lifetime counters from the
// end-of-game disclosure. Winners are the players whose side matched the
// result and, for the crew, survived or not alike.
func (s *GameStore) RecordGameOutcome(end game.GameEndPayload, roster []game.Player) error {
	for _, p := range roster {
		won := (end.Result == game.ResultCrewWin && p.Role == game.RoleChef) ||
			(end.Result == game.ResultSaboteurWin && p.Role == game.RoleSaboteur)

		if err := s.upsertProfile(p, won); err != nil {
			return err
		}
	}
	return nil
}

func (s *GameStore) upsertProfile(p game.Player, won bool) error {
	var profile postgres.AgentProfile
	err := s.db.First(&profile, "address = ?", p.Address).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = postgres.AgentProfile{
			Address: p.Address,
			Name:    p.Name,
			Stats:   datatypes.JSON("{}"),
		}
		profile.GamesPlayed = 1
		if won {
			profile.GamesWon = 1
		}
		profile.LastSeenAt = time.Now()
		if err := s.db.Create(&profile).Error; err != nil {
			return fmt.Errorf("error creating profile for %s: %v", p.Address, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("error loading profile for %s: %v", p.Address, err)
	}

	profile.GamesPlayed++
	if won {
		profile.GamesWon++
	}
	if p.Name != "" {
		profile.Name = p.Name
	}
	profile.LastSeenAt = time.Now()
	if err := s.db.Save(&profile).Error; err != nil {
		return fmt.Errorf("error updating profile for %s: %v", p.Address, err)
	}
	return nil
}

// GetAgentProfile loads one agent's lifetime record.
func (s *GameStore) GetAgentProfile(address string) (*postgres.AgentProfile, error) {
	var profile postgres.AgentProfile
	if err := s.db.First(&profile, "address = ?", address).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
