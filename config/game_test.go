package config

import (
	"testing"
	"time"

	game_constants "github.com/kamalbuilds/pizza-panic-sub000/constants/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGameConfigDefaults(t *testing.T) {
	cfg, err := LoadGameConfig()
	require.NoError(t, err)

	assert.Equal(t, game_constants.MinPlayers, cfg.MinPlayers)
	assert.Equal(t, game_constants.MaxPlayers, cfg.MaxPlayers)
	assert.Equal(t, game_constants.DISCUSSION_TIMEOUT, cfg.DiscussionDuration)
	assert.Equal(t, game_constants.VOTING_TIMEOUT, cfg.VotingDuration)
	assert.Equal(t, game_constants.InvestigationAccuracy, cfg.InvestigationAccuracy)
}

func TestLoadGameConfigFromEnv(t *testing.T) {
	t.Setenv("MIN_PLAYERS", "6")
	t.Setenv("MAX_PLAYERS", "8")
	t.Setenv("MAX_ROUNDS", "4")
	t.Setenv("DISCUSSION_SECONDS", "60")
	t.Setenv("VOTING_SECONDS", "30")
	t.Setenv("AUTO_START_SECONDS", "5")
	t.Setenv("INVESTIGATION_ACCURACY", "0.9")
	t.Setenv("IMPOSTOR_BRACKETS", "7:1,8:2")

	cfg, err := LoadGameConfig()
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.MinPlayers)
	assert.Equal(t, 8, cfg.MaxPlayers)
	assert.Equal(t, 4, cfg.MaxRounds)
	assert.Equal(t, time.Minute, cfg.DiscussionDuration)
	assert.Equal(t, 30*time.Second, cfg.VotingDuration)
	assert.Equal(t, 5*time.Second, cfg.AutoStartDelay)
	assert.Equal(t, 0.9, cfg.InvestigationAccuracy)
	require.Len(t, cfg.ImpostorBrackets, 2)
	assert.Equal(t, game_constants.ImpostorBracket{MaxPlayers: 7, Count: 1}, cfg.ImpostorBrackets[0])
}

func TestLoadGameConfigRejectsBadValues(t *testing.T) {
	t.Setenv("MIN_PLAYERS", "banana")
	_, err := LoadGameConfig()
	assert.Error(t, err)
}

func TestValidateRejectsDegenerateConfigs(t *testing.T) {
	base := DefaultGameConfig()
	require.NoError(t, base.Validate())

	cfg := *base
	cfg.MinPlayers = 2
	assert.Error(t, cfg.Validate())

	cfg = *base
	cfg.MaxPlayers = cfg.MinPlayers - 1
	assert.Error(t, cfg.Validate())

	cfg = *base
	cfg.MaxRounds = 0
	assert.Error(t, cfg.Validate())

	cfg = *base
	cfg.VotingDuration = 0
	assert.Error(t, cfg.Validate())

	cfg = *base
	cfg.InvestigationAccuracy = 1.5
	assert.Error(t, cfg.Validate())

	cfg = *base
	cfg.ImpostorBrackets = []game_constants.ImpostorBracket{{MaxPlayers: 10, Count: cfg.MinPlayers}}
	assert.Error(t, cfg.Validate())
}

func TestImpostorCountFor(t *testing.T) {
	cfg := DefaultGameConfig()

	assert.Equal(t, 1, cfg.ImpostorCountFor(5))
	assert.Equal(t, 1, cfg.ImpostorCountFor(6))
	assert.Equal(t, 2, cfg.ImpostorCountFor(7))
	assert.Equal(t, 2, cfg.ImpostorCountFor(9))
	assert.Equal(t, 3, cfg.ImpostorCountFor(10))
	assert.Equal(t, 3, cfg.ImpostorCountFor(12), "beyond the last bracket")
}

func TestParseImpostorBracketsErrors(t *testing.T) {
	_, err := parseImpostorBrackets("6")
	assert.Error(t, err)

	_, err = parseImpostorBrackets("6:x")
	assert.Error(t, err)

	_, err = parseImpostorBrackets("")
	assert.Error(t, err)
}
