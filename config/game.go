package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	game_constants "github.com/kamalbuilds/pizza-panic-sub000/constants/game"
)

// GameConfig holds every externally tunable game parameter. Values come from
// the environment with defaults from the constants package; degenerate values
// are construction-time errors, not runtime conditions.
type GameConfig struct {
	MinPlayers            int
	MaxPlayers            int
	MaxRounds             int
	DiscussionDuration    time.Duration
	VotingDuration        time.Duration
	AutoStartDelay        time.Duration
	InvestigationAccuracy float64
	ImpostorBrackets      []game_constants.ImpostorBracket
}

// DefaultGameConfig returns the built-in defaults without touching the env.
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		MinPlayers:            game_constants.MinPlayers,
		MaxPlayers:            game_constants.MaxPlayers,
		MaxRounds:             game_constants.MaxGameRounds,
		DiscussionDuration:    game_constants.DISCUSSION_TIMEOUT,
		VotingDuration:        game_constants.VOTING_TIMEOUT,
		AutoStartDelay:        game_constants.AUTO_START_DELAY,
		InvestigationAccuracy: game_constants.InvestigationAccuracy,
		ImpostorBrackets:      game_constants.DefaultImpostorBrackets,
	}
}

// LoadGameConfig builds the game configuration from environment variables,
// falling back to defaults for anything unset.
func LoadGameConfig() (*GameConfig, error) {
	cfg := DefaultGameConfig()

	if v := os.Getenv("MIN_PLAYERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MIN_PLAYERS %q: %w", v, err)
		}
		cfg.MinPlayers = n
	}
	if v := os.Getenv("MAX_PLAYERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_PLAYERS %q: %w", v, err)
		}
		cfg.MaxPlayers = n
	}
	if v := os.Getenv("MAX_ROUNDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_ROUNDS %q: %w", v, err)
		}
		cfg.MaxRounds = n
	}
	if v := os.Getenv("DISCUSSION_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DISCUSSION_SECONDS %q: %w", v, err)
		}
		cfg.DiscussionDuration = time.Duration(n) * time.Second
	}
	if v := os.Getenv("VOTING_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid VOTING_SECONDS %q: %w", v, err)
		}
		cfg.VotingDuration = time.Duration(n) * time.Second
	}
	if v := os.Getenv("AUTO_START_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTO_START_SECONDS %q: %w", v, err)
		}
		cfg.AutoStartDelay = time.Duration(n) * time.Second
	}
	if v := os.Getenv("INVESTIGATION_ACCURACY"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid INVESTIGATION_ACCURACY %q: %w", v, err)
		}
		cfg.InvestigationAccuracy = f
	}
	if v := os.Getenv("IMPOSTOR_BRACKETS"); v != "" {
		brackets, err := parseImpostorBrackets(v)
		if err != nil {
			return nil, err
		}
		cfg.ImpostorBrackets = brackets
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would make a game degenerate.
func (c *GameConfig) Validate() error {
	if c.MinPlayers < 3 {
		return fmt.Errorf("MIN_PLAYERS must be at least 3, got %d", c.MinPlayers)
	}
	if c.MaxPlayers < c.MinPlayers {
		return fmt.Errorf("MAX_PLAYERS (%d) below MIN_PLAYERS (%d)", c.MaxPlayers, c.MinPlayers)
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("MAX_ROUNDS must be positive, got %d", c.MaxRounds)
	}
	if c.DiscussionDuration <= 0 || c.VotingDuration <= 0 {
		return fmt.Errorf("phase durations must be positive (discussion=%s, voting=%s)",
			c.DiscussionDuration, c.VotingDuration)
	}
	if c.InvestigationAccuracy <= 0 || c.InvestigationAccuracy > 1 {
		return fmt.Errorf("INVESTIGATION_ACCURACY must be in (0,1], got %f", c.InvestigationAccuracy)
	}
	for _, b := range c.ImpostorBrackets {
		if b.Count < 1 || b.Count >= c.MinPlayers {
			return fmt.Errorf("impostor bracket %d:%d incompatible with min players %d",
				b.MaxPlayers, b.Count, c.MinPlayers)
		}
	}
	return nil
}

// ImpostorCountFor returns the saboteur count for a roster of the given size.
func (c *GameConfig) ImpostorCountFor(playerCount int) int {
	for _, b := range c.ImpostorBrackets {
		if playerCount <= b.MaxPlayers {
			return b.Count
		}
	}
	// Beyond the last bracket, stick with the largest configured count.
	return c.ImpostorBrackets[len(c.ImpostorBrackets)-1].Count
}

// parseImpostorBrackets parses "6:1,9:2,10:3" into bracket structs.
func parseImpostorBrackets(s string) ([]game_constants.ImpostorBracket, error) {
	var brackets []game_constants.ImpostorBracket
	for _, part := range strings.Split(s, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid IMPOSTOR_BRACKETS entry %q", part)
		}
		maxPlayers, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("invalid IMPOSTOR_BRACKETS entry %q: %w", part, err)
		}
		count, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("invalid IMPOSTOR_BRACKETS entry %q: %w", part, err)
		}
		brackets = append(brackets, game_constants.ImpostorBracket{MaxPlayers: maxPlayers, Count: count})
	}
	if len(brackets) == 0 {
		return nil, fmt.Errorf("IMPOSTOR_BRACKETS is empty")
	}
	return brackets, nil
}
