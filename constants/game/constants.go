package game_constants

import "time"

// Roster limits
const MinPlayers = 5
const MaxPlayers = 10

// MaxGameRounds is the hard round limit. When it is reached without the
// saboteurs achieving parity, the CREW wins. This ruling is deliberate: the
// alternative "saboteurs survive to the limit, saboteurs win" convention is
// NOT used here.
const MaxGameRounds = 10

// Phase timeouts
const (
	DISCUSSION_TIMEOUT = 3 * time.Minute
	VOTING_TIMEOUT     = 90 * time.Second
	AUTO_START_DELAY   = 10 * time.Second
)

// InvestigationAccuracy is the probability that an investigation reports the
// target's true role category.
const InvestigationAccuracy = 0.80

// How many completed games the Redis recent-games list keeps
const RecentGamesCacheSize = 50

type ImpostorBracket struct {
	MaxPlayers int
	Count      int
}

// Saboteur count by roster size: up to 6 players -> 1, up to 9 -> 2, 10 -> 3.
// Overridable via the IMPOSTOR_BRACKETS env var (e.g. "6:1,9:2,10:3").
var DefaultImpostorBrackets = []ImpostorBracket{
	{MaxPlayers: 6, Count: 1},
	{MaxPlayers: 9, Count: 2},
	{MaxPlayers: 10, Count: 3},
}
