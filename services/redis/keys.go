package redis

import "fmt"

// FormatRecentGamesKey returns the key of the recent-games cache list.
func FormatRecentGamesKey() string {
	return "games:recent"
}

// FormatGameChannel returns the pub/sub channel name for a game's events.
func FormatGameChannel(gameID string) string {
	return fmt.Sprintf("game:%s:events", gameID)
}
